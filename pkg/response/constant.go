package response

// MessageSuccess is the message body of every OK envelope.
const MessageSuccess = "Success"

package login

// MsgInvalidCredentials is returned when the backend rejected the email and password.
const MsgInvalidCredentials = "Invalid email or password."

package types

const ContextUserKey = "user"

// SessionCookie holds the signed session token.
const SessionCookie = "token"

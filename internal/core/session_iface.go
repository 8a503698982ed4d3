package core

// SessionID identifies one physical connection. It is assigned by the
// adapter on upgrade and never reused.
type SessionID string

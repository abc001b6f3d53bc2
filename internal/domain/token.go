package domain

// Token is the public view of an issued credential. The raw secret is
// handed out exactly once at issuance; only its keyed hash is stored and
// the hash is never returned.
type Token struct {
	ID     int64  `json:"id"`
	Prefix string `json:"prefix"`
}

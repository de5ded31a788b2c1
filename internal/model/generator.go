package model

// GenerateRequest represents a password generation request.
// A nil Classes slice selects every class; an explicit empty list selects none.
type GenerateRequest struct {
	Length    int      `json:"length"`
	Classes   []string `json:"classes"`
	Exclude   string   `json:"exclude"`
	Custom    string   `json:"custom"`
	EachClass string   `json:"each_class"`
	Hash      bool     `json:"hash"`
}

// GenerateResponse represents a password generation response.
type GenerateResponse struct {
	Password string           `json:"password"`
	Length   int              `json:"length"`
	Strength StrengthResponse `json:"strength"`
	Hash     string           `json:"hash,omitempty"`
}

// StrengthRequest asks for the strength of a caller-supplied password.
type StrengthRequest struct {
	Password string `json:"password"`
}

// StrengthResponse reports the estimated strength of a password.
type StrengthResponse struct {
	Entropy   float64 `json:"entropy"`
	Label     string  `json:"label"`
	Score     int     `json:"score"`
	CrackTime string  `json:"crack_time"`
}

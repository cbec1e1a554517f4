package model

type CompileRequestBody struct {
	Text  string  `json:"text"`
	Tempo float64 `json:"tempo"`
}

type CompileResponse struct {
	Events   Sequence `json:"events"`
	Rests    int      `json:"rests"`
	Notes    int      `json:"notes"`
	Chords   int      `json:"chords"`
	LengthMs int64    `json:"length_ms"`
}

type PlayResponse struct {
	Session  string `json:"session"`
	Events   int    `json:"events"`
	LengthMs int64  `json:"length_ms"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}

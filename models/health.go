package models

import "time"

type HealthGetResponse struct {
	Ready    bool      `json:"ready"`
	Segments int       `json:"segments"`
	BuiltAt  time.Time `json:"builtAt"`
}

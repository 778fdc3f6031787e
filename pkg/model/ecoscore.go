package model

const (
	MaxSourcingScore      = 40
	MaxTransparencyScore  = 30
	MaxRepairabilityScore = 30
)

// SubScores are the deterministic parts of an eco-score
type SubScores struct {
	Sourcing      int `json:"sourcing"`
	Transparency  int `json:"transparency"`
	Repairability int `json:"repairability"`
}

// Total is the plain sum of the sub-scores. Only the parts are clamped.
func (s SubScores) Total() int {
	return s.Sourcing + s.Transparency + s.Repairability
}

type EcoScore struct {
	Total            int      `json:"total"`
	Sourcing         int      `json:"sourcing"`
	Transparency     int      `json:"transparency"`
	Repairability    int      `json:"repairability"`
	Summary          string   `json:"summary"`
	RationaleBullets []string `json:"rationaleBullets"`
	Tips             []string `json:"tips"`
}

// ScoreRequest is the input of eco-score calculation
type ScoreRequest struct {
	DetectedProduct DetectedProduct `json:"detectedProduct"`
	EvidencePack    EvidencePack    `json:"evidencePack"`
	OriginPins      []OriginPin     `json:"originPins"`
}

// Validate checks the request before scoring
func (r *ScoreRequest) Validate() error {
	if err := r.DetectedProduct.Validate(); err != nil {
		return err
	}
	for _, c := range r.EvidencePack.Claims {
		if err := c.Type.Validate(); err != nil {
			return err
		}
	}
	return nil
}

package predictor

// Wire payloads for the podium prediction model service.

type predictRequest struct {
	Driver       string `json:"driver"`
	Circuit      string `json:"circuit"`
	GridPosition int    `json:"grid_position"`
	RecentForm   string `json:"recent_form"`
	Weather      string `json:"weather"`
}

type predictFactor struct {
	Factor string `json:"factor"`
	Impact string `json:"impact"`
	Icon   string `json:"icon"`
}

type predictResponse struct {
	Driver              string          `json:"driver"`
	Circuit             string          `json:"circuit"`
	PodiumProbability   float64         `json:"podium_probability"`
	PredictedPosition   int             `json:"predicted_position"`
	Confidence          string          `json:"confidence"`
	ContributingFactors []predictFactor `json:"contributing_factors"`
}

type driversResponse struct {
	Count   int      `json:"count"`
	Drivers []string `json:"drivers"`
}

type circuitsResponse struct {
	Count    int      `json:"count"`
	Circuits []string `json:"circuits"`
}

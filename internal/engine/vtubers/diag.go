package vtubers

// StageDiag records what happened inside one search stage.
type StageDiag struct {
	Stage         Stage    `json:"stage"`
	Raw           int      `json:"raw"`
	Accepted      int      `json:"accepted"`
	RejectedName  int      `json:"rejected_name"`
	RejectedScore int      `json:"rejected_score"`
	Failures      []string `json:"failures,omitempty"`
}

// PlatformDiag collects the per-stage records for one platform.
type PlatformDiag struct {
	Platform Platform    `json:"platform"`
	Stages   []StageDiag `json:"stages,omitempty"`
	Aborted  string      `json:"aborted,omitempty"` // set when the whole pipeline was abandoned
}

// Diagnostics is the debug view of one orchestrated search. It is
// collected unconditionally and only surfaced when the caller asked
// for it; nothing in here affects scoring or ordering.
type Diagnostics struct {
	Twitch  PlatformDiag `json:"twitch"`
	YouTube PlatformDiag `json:"youtube"`
}

// Collector accumulates diagnostics for a single platform pipeline.
// Each stage runner owns its collector, so no locking is needed.
type Collector struct {
	diag PlatformDiag
	cur  *StageDiag
}

// NewCollector starts a collector for one platform.
func NewCollector(platform Platform) *Collector {
	return &Collector{diag: PlatformDiag{Platform: platform}}
}

// BeginStage opens a new stage record. Subsequent counts apply to it.
func (c *Collector) BeginStage(stage Stage) {
	c.diag.Stages = append(c.diag.Stages, StageDiag{Stage: stage})
	c.cur = &c.diag.Stages[len(c.diag.Stages)-1]
}

func (c *Collector) Raw(n int)      { c.cur.Raw += n }
func (c *Collector) Accepted()      { c.cur.Accepted++ }
func (c *Collector) RejectedName()  { c.cur.RejectedName++ }
func (c *Collector) RejectedScore() { c.cur.RejectedScore++ }

// Failure records an absorbed capability error for the current stage.
func (c *Collector) Failure(err error) {
	c.cur.Failures = append(c.cur.Failures, err.Error())
}

// Abort marks the whole platform pipeline as abandoned (timeout).
func (c *Collector) Abort(reason string) {
	c.diag.Aborted = reason
}

// Result returns the collected record.
func (c *Collector) Result() PlatformDiag {
	return c.diag
}

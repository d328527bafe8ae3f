package metrics

import "time"

// Stage names one step of the file compilation pipeline.
type Stage string

const (
	StageRead   Stage = "read"
	StageRender Stage = "render"
	StageMinify Stage = "minify"
	StageWrite  Stage = "write"
)

// ResultLabel is the outcome of a stage or batch.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// Trigger names what started a batch.
type Trigger string

const (
	TriggerInitial Trigger = "initial"
	TriggerChange  Trigger = "change"
)

// Recorder receives pipeline and batch measurements.
type Recorder interface {
	ObserveStageDuration(stage Stage, d time.Duration)
	IncStageResult(stage Stage, result ResultLabel)
	ObserveBatchDuration(trigger Trigger, d time.Duration)
	IncBatch(trigger Trigger, result ResultLabel)
	AddFiles(result ResultLabel, n int)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(Stage, time.Duration)   {}
func (NoopRecorder) IncStageResult(Stage, ResultLabel)           {}
func (NoopRecorder) ObserveBatchDuration(Trigger, time.Duration) {}
func (NoopRecorder) IncBatch(Trigger, ResultLabel)               {}
func (NoopRecorder) AddFiles(ResultLabel, int)                   {}

// ResultOf maps an error to its result label.
func ResultOf(err error) ResultLabel {
	if err != nil {
		return ResultFailed
	}
	return ResultSuccess
}

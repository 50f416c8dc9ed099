package constants

// DocumentStatus is the terminal state of one document within a batch.
type DocumentStatus string

const (
	DocumentPersisted DocumentStatus = "PERSISTED" // record stored and accumulated
	DocumentSkipped   DocumentStatus = "SKIPPED"   // failed at some stage
)

// BatchStatus is the state of a batch run.
type BatchStatus string

const (
	BatchQueued    BatchStatus = "QUEUED"
	BatchRunning   BatchStatus = "RUNNING"
	BatchCompleted BatchStatus = "COMPLETED" // at least one record, export built
	BatchEmpty     BatchStatus = "EMPTY"     // no record extracted
	BatchFailed    BatchStatus = "FAILED"    // aborted before the first document
)

// AcquisitionMethod records how a document's text was obtained.
type AcquisitionMethod string

const (
	MethodNative AcquisitionMethod = "native"
	MethodOCR    AcquisitionMethod = "ocr"
)

package normalize

// BatchFailure records why the element at Index was rejected.
type BatchFailure struct {
	Index int   `json:"index"`
	Err   error `json:"-"`
}

// Batch holds the decoded subset of a history payload, in input order, and
// the elements that failed.
type Batch[T any] struct {
	OK     []T
	Failed []BatchFailure
}

// NormalizeRecordBatch applies fn to every element. A failing element is
// collected in Failed and does not stop the rest of the batch.
func NormalizeRecordBatch[T any](raws []RawRecord, fn func(RawRecord) (T, error)) Batch[T] {
	b := Batch[T]{OK: make([]T, 0, len(raws)), Failed: []BatchFailure{}}
	for i, raw := range raws {
		rec, err := fn(raw)
		if err != nil {
			b.Failed = append(b.Failed, BatchFailure{Index: i, Err: err})
			continue
		}
		b.OK = append(b.OK, rec)
	}
	return b
}

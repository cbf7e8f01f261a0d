package cachevault

// Result is the structured outcome of every public operation. Nothing
// escapes the boundary as a panic or raw fault: callers check Success and
// read either Data or Err.
type Result struct {
	Success bool
	Data    any
	Err     error
}

func success(v any) Result { return Result{Success: true, Data: v} }
func failure(err error) Result {
	return Result{Success: false, Err: err}
}

// Stats reports quota usage for the namespace, refreshed from the backend.
type Stats struct {
	Used        int64
	Total       int64
	Available   int64
	PercentUsed float64
}

// CompressionStats reports an entry's stored size metadata without decoding
// its payload.
type CompressionStats struct {
	Compressed     bool
	OriginalSize   int
	CompressedSize int
	SavingsPercent float64
}

package solver

// IterationRecord is one progress sample of a running solve.
type IterationRecord struct {
	Label        string  `json:"label"`
	Iteration    int     `json:"iteration"`
	ResidualNorm float64 `json:"residual_norm"`
	StepSize     float64 `json:"step_size"`
}

// Hub fans iteration records out to an observer (the websocket server in the
// shipped binary). Publishing never blocks the solve: records are dropped
// when the consumer lags.
type Hub struct {
	Records chan IterationRecord
}

func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 64
	}
	return &Hub{Records: make(chan IterationRecord, buffer)}
}

// Publish offers a record without blocking.
func (h *Hub) Publish(rec IterationRecord) {
	select {
	case h.Records <- rec:
	default:
	}
}

// Close releases the channel. Call only after the producing solve returned.
func (h *Hub) Close() { close(h.Records) }

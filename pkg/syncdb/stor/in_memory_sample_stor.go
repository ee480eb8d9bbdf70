package stor

type InMemorySampleStor struct {
	ErrToReturn error

	// Lookups counts calls to GetSampleIDsForDataset.
	Lookups int

	samples map[string][]string
}

func NewInMemorySampleStor(samples map[string][]string) *InMemorySampleStor {
	if samples == nil {
		samples = make(map[string][]string)
	}

	return &InMemorySampleStor{samples: samples}
}

func (s *InMemorySampleStor) GetSampleIDsForDataset(fdID string) ([]string, error) {
	s.Lookups++
	if s.ErrToReturn != nil {
		return nil, s.ErrToReturn
	}

	return append([]string(nil), s.samples[fdID]...), nil
}

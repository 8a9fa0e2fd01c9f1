package ops

import "context"

// ListInput contains parameters for the List operation.
type ListInput struct {
	IncludeBuiltin bool // prepend the built-in templates
	Limit          int  // default: 50, max: 500
	Offset         int  // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []Template `json:"items"`
	Pagination Pagination `json:"pagination"`
	Selected   string     `json:"selected"`
}

// List returns template summaries in stored order. Stored artifacts are
// omitted; use Get to read one.
func (s *Service) List(ctx context.Context, input ListInput) (out *ListOutput, err error) {
	defer func() { s.record("list", err) }()

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := max(input.Offset, 0)

	s.mu.Lock()
	list, err := s.load(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var all []Template
	if input.IncludeBuiltin {
		all = append(all, Builtins()...)
	}
	all = append(all, list...)

	items := []Template{}
	for i := offset; i < len(all) && len(items) < limit; i++ {
		items = append(items, all[i].Summary())
	}

	selected, err := s.selectedID(ctx)
	if err != nil {
		return nil, err
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < len(all),
			Total:   len(all),
		},
		Selected: selected,
	}, nil
}

// Package artifact declares stores for rendered instance documents.
package artifact

import "context"

// Store keeps named documents of a run.
type Store interface {
	// Save stores data under name and returns its location.
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// Multi saves to several stores. The location of the first store is
// returned.
type Multi []Store

func (m Multi) Save(ctx context.Context, name string, data []byte) (string, error) {
	var res string
	for i, s := range m {
		loc, err := s.Save(ctx, name, data)
		if err != nil {
			return res, err
		}
		if i == 0 {
			res = loc
		}
	}
	return res, nil
}

package memory

import (
	"context"

	"github.com/Freeeeeet/appointment_service/internal/model"
	"github.com/google/uuid"
)

type Users struct {
	s *Store
}

func (r *Users) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, notFound("get user by id")
	}
	out := *u
	return &out, nil
}

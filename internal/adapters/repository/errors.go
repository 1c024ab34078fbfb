package repository

import (
	"errors"
	"fmt"

	"github.com/okian/excess/internal/domain/model"
)

var (
	ErrNotFound     = fmt.Errorf("baseline %w", model.ErrNotFound)
	ErrInvalidLimit = errors.New("invalid baseline limit")
)

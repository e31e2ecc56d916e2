package repository

import "context"

type UserRepository interface {
	Exists(ctx context.Context, username string) (bool, error)
}

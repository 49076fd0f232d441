package themes

import (
	"context"
	"io/fs"

	gotheme "github.com/goliatone/go-theme"
)

type noopService struct{}

// NewNoOpService returns a Service that rejects every operation. It backs
// surfaces that run without theming, like the lint command.
func NewNoOpService() Service {
	return noopService{}
}

func (noopService) Register(context.Context, string) (*Theme, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) RegisterFS(context.Context, fs.FS) (*Theme, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) Discover(context.Context, string) ([]*Theme, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) Get(context.Context, string) (*Theme, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) List(context.Context) ([]*Theme, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) Activate(context.Context, string) (*Theme, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) Active(context.Context) (*Theme, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) ResolveLayout(context.Context, string) (Layout, error) {
	return Layout{}, ErrFeatureDisabled
}

func (noopService) Selection(context.Context, string) (*gotheme.Selection, error) {
	return nil, ErrFeatureDisabled
}

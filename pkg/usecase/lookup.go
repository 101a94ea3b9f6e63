package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tributary/pkg/domain/interfaces"
	"github.com/secmon-lab/tributary/pkg/domain/model"
)

// LookupUseCase maintains the named lists read by lookup rules
type LookupUseCase struct {
	repo interfaces.Repository
}

func NewLookupUseCase(repo interfaces.Repository) *LookupUseCase {
	return &LookupUseCase{repo: repo}
}

// PutList creates or replaces a list
func (uc *LookupUseCase) PutList(ctx context.Context, list *model.LookupList) error {
	if list == nil || list.Name == "" {
		return goerr.Wrap(ErrEmptyLookupListName, "failed to put lookup list")
	}
	if list.Items == nil {
		list.Items = map[string]map[string]any{}
	}

	if err := uc.repo.LookupList().Put(ctx, list); err != nil {
		return goerr.Wrap(err, "failed to put lookup list", goerr.V(ListNameKey, list.Name))
	}
	return nil
}

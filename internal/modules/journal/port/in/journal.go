package in

import (
	"context"

	"learnjourney/internal/modules/journal/dto"
)

type Usecase interface {
	Export(ctx context.Context) (dto.ExportOutput, error)
}

package repository

import (
	"context"

	"GeoScan-App/internal/domain/model"
)

// PredictionJobRepository は推論結果のキャッシュ（Firestore）を担うリポジトリインターフェース
type PredictionJobRepository interface {
	// SavePredictionResult は推論結果を保存し、生成したjob_idを返す
	SavePredictionResult(ctx context.Context, job *model.PredictionJob, ttlHours int) (string, error)

	// GetPredictionResult は指定されたjob_idの推論結果を取得する
	GetPredictionResult(ctx context.Context, jobID string) (*model.PredictionJob, error)
}

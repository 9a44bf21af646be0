package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"GeoScan-App/internal/domain/model"
	"GeoScan-App/internal/domain/repository"
	"GeoScan-App/internal/domain/service"
)

// predictionJobTTLHours 推論ジョブのFirestore保存期間
const predictionJobTTLHours = 24

type PredictUseCase interface {
	// Predict はモデルをロードして入力行を推論し、必要ならジョブとして保存する
	Predict(ctx context.Context, uid string, req *model.PredictRequest) (*model.PredictResponse, error)

	// GetPredictionJob は保存済み推論ジョブを取得する
	GetPredictionJob(ctx context.Context, jobID string) (*model.PredictionJob, error)
}

// predictUseCaseImpl はPredictUseCaseの実装
type predictUseCaseImpl struct {
	registry  repository.ModelRegistryRepository
	inference *service.InferenceService
	jobs      repository.PredictionJobRepository // nilの場合はジョブ保存を無効化
}

// NewPredictUseCase は新しいPredictUseCaseインスタンスを作成
// jobsがnilの場合、store_results指定はエラーになる
func NewPredictUseCase(
	registry repository.ModelRegistryRepository,
	inference *service.InferenceService,
	jobs repository.PredictionJobRepository,
) PredictUseCase {
	return &predictUseCaseImpl{
		registry:  registry,
		inference: inference,
		jobs:      jobs,
	}
}

func (u *predictUseCaseImpl) Predict(ctx context.Context, uid string, req *model.PredictRequest) (*model.PredictResponse, error) {
	if len(req.Rows) == 0 {
		return nil, fmt.Errorf("推論対象の行がありません")
	}
	if req.StoreResults && u.jobs == nil {
		return nil, fmt.Errorf("推論ジョブの保存が無効です（Firestore未設定）")
	}

	m, err := u.registry.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	response, err := u.inference.Transform(ctx, m, req.Rows)
	if err != nil {
		return nil, err
	}

	if req.StoreResults {
		job := &model.PredictionJob{
			ModelUID:     m.UID,
			RowCount:     response.RowCount,
			MatchedCount: response.MatchedCount,
			Rows:         response.Rows,
			CreatedAt:    time.Now().UTC(),
		}
		jobID, err := u.jobs.SavePredictionResult(ctx, job, predictionJobTTLHours)
		if err != nil {
			// 推論自体は成功しているため結果は返す
			log.Printf("⚠️ 推論ジョブの保存に失敗: %v", err)
		} else {
			response.JobID = jobID
		}
	}

	return response, nil
}

func (u *predictUseCaseImpl) GetPredictionJob(ctx context.Context, jobID string) (*model.PredictionJob, error) {
	if u.jobs == nil {
		return nil, fmt.Errorf("推論ジョブ %s: %w", jobID, model.ErrJobNotFound)
	}
	return u.jobs.GetPredictionResult(ctx, jobID)
}

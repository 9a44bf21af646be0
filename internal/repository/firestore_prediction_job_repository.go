package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"GeoScan-App/internal/domain/model"
	"GeoScan-App/internal/domain/repository"
)

// predictionJobsCollection 推論ジョブを保存するFirestoreコレクション名
const predictionJobsCollection = "predictionJobs"

// FirestorePredictionJobRepository Firestoreを使用した推論ジョブキャッシュリポジトリ
// 結果はTTL付きで保存され、期限切れ後はFirestoreのTTLポリシーで削除される
type FirestorePredictionJobRepository struct {
	client *firestore.Client
}

// NewFirestorePredictionJobRepository 新しいFirestorePredictionJobRepositoryインスタンスを作成
func NewFirestorePredictionJobRepository(client *firestore.Client) repository.PredictionJobRepository {
	return &FirestorePredictionJobRepository{
		client: client,
	}
}

// SavePredictionResult は推論結果をFirestoreに保存し、job_idを生成して返す
func (r *FirestorePredictionJobRepository) SavePredictionResult(ctx context.Context, job *model.PredictionJob, ttlHours int) (string, error) {
	jobID := fmt.Sprintf("pred_%s", uuid.New().String())

	resultsJSON, err := json.Marshal(job.Rows)
	if err != nil {
		return "", fmt.Errorf("推論結果のJSONマーシャル失敗: %w", err)
	}

	doc := &model.FirestorePredictionJob{
		ModelUID:     job.ModelUID,
		RowCount:     job.RowCount,
		MatchedCount: job.MatchedCount,
		ResultsJSON:  string(resultsJSON),
		CreatedAt:    job.CreatedAt,
		ExpireAt:     time.Now().Add(time.Duration(ttlHours) * time.Hour),
	}

	_, err = r.client.Collection(predictionJobsCollection).Doc(jobID).Set(ctx, doc)
	if err != nil {
		log.Printf("❌ Failed to save prediction job %s: %v", jobID, err)
		return "", fmt.Errorf("推論ジョブの保存に失敗しました: %w", err)
	}

	log.Printf("✅ Prediction job saved: %s (expires in %d hours)", jobID, ttlHours)
	return jobID, nil
}

// GetPredictionResult は指定されたjob_idの推論結果をFirestoreから取得する
func (r *FirestorePredictionJobRepository) GetPredictionResult(ctx context.Context, jobID string) (*model.PredictionJob, error) {
	doc, err := r.client.Collection(predictionJobsCollection).Doc(jobID).Get(ctx)
	if err != nil {
		// Firestoreのエラータイプをチェック
		if status := err.Error(); strings.Contains(status, "NotFound") || strings.Contains(status, "not found") {
			return nil, fmt.Errorf("推論ジョブ %s（有効期限切れまたは無効なID）: %w", jobID, model.ErrJobNotFound)
		}
		return nil, fmt.Errorf("推論ジョブの取得に失敗しました: %w", err)
	}

	var data model.FirestorePredictionJob
	if err := doc.DataTo(&data); err != nil {
		return nil, fmt.Errorf("データの変換に失敗しました: %w", err)
	}

	var rows []model.Row
	if err := json.Unmarshal([]byte(data.ResultsJSON), &rows); err != nil {
		return nil, fmt.Errorf("推論結果のJSONアンマーシャル失敗: %w", err)
	}

	return &model.PredictionJob{
		JobID:        jobID,
		ModelUID:     data.ModelUID,
		RowCount:     data.RowCount,
		MatchedCount: data.MatchedCount,
		Rows:         rows,
		CreatedAt:    data.CreatedAt,
	}, nil
}

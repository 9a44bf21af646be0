package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"GeoScan-App/internal/domain/model"
	"GeoScan-App/internal/infrastructure/database"
)

// PostgresModelRegistryRepository はPostgreSQL直接接続によるモデルレジストリ
// SupabaseのPostgREST経由と同じテーブルを使い、同一インターフェースを満たす
type PostgresModelRegistryRepository struct {
	client *database.PostgreSQLClient
}

func NewPostgresModelRegistryRepository(client *database.PostgreSQLClient) *PostgresModelRegistryRepository {
	return &PostgresModelRegistryRepository{
		client: client,
	}
}

// EnsureSchema レジストリテーブルを必要に応じて作成する
func (r *PostgresModelRegistryRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.client.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS geoscan_models (
			uid            TEXT PRIMARY KEY,
			epsilon        DOUBLE PRECISION NOT NULL,
			layers         INTEGER NOT NULL DEFAULT 0,
			prediction_col TEXT NOT NULL,
			latitude_col   TEXT NOT NULL,
			longitude_col  TEXT NOT NULL,
			class          TEXT NOT NULL,
			num_clusters   INTEGER NOT NULL,
			geojson        TEXT NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("geoscan_modelsテーブルの作成失敗: %w", err)
	}
	return nil
}

func (r *PostgresModelRegistryRepository) Save(ctx context.Context, m *model.GeoScanModel) error {
	record, err := recordFromModel(m)
	if err != nil {
		return err
	}

	_, err = r.client.DB.ExecContext(ctx, `
		INSERT INTO geoscan_models
			(uid, epsilon, layers, prediction_col, latitude_col, longitude_col, class, num_clusters, geojson, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		record.UID, record.Epsilon, record.Layers, record.PredictionCol,
		record.LatitudeCol, record.LongitudeCol, record.Class,
		record.NumClusters, record.GeoJSON, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("モデル %s の登録失敗: %w", m.UID, err)
	}
	return nil
}

func (r *PostgresModelRegistryRepository) GetByUID(ctx context.Context, uid string) (*model.GeoScanModel, error) {
	var record model.GeoScanModelRecord
	err := r.client.DB.QueryRowContext(ctx, `
		SELECT uid, epsilon, layers, prediction_col, latitude_col, longitude_col, class, num_clusters, geojson, created_at
		FROM geoscan_models WHERE uid = $1`, uid).Scan(
		&record.UID, &record.Epsilon, &record.Layers, &record.PredictionCol,
		&record.LatitudeCol, &record.LongitudeCol, &record.Class,
		&record.NumClusters, &record.GeoJSON, &record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("モデル %s: %w", uid, model.ErrModelNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("モデルデータの取得失敗: %w", err)
	}

	return modelFromRecord(&record)
}

func (r *PostgresModelRegistryRepository) GetAll(ctx context.Context) ([]model.ModelSummary, error) {
	rows, err := r.client.DB.QueryContext(ctx, `
		SELECT uid, epsilon, layers, num_clusters, created_at
		FROM geoscan_models ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("モデル一覧の取得失敗: %w", err)
	}
	defer rows.Close()

	summaries := make([]model.ModelSummary, 0)
	for rows.Next() {
		var summary model.ModelSummary
		if err := rows.Scan(&summary.UID, &summary.Epsilon, &summary.Layers, &summary.NumClusters, &summary.CreatedAt); err != nil {
			return nil, fmt.Errorf("モデル一覧のスキャン失敗: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("モデル一覧の読み取り失敗: %w", err)
	}
	return summaries, nil
}

func (r *PostgresModelRegistryRepository) Delete(ctx context.Context, uid string) error {
	_, err := r.client.DB.ExecContext(ctx, `DELETE FROM geoscan_models WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("モデル %s の削除失敗: %w", uid, err)
	}
	return nil
}

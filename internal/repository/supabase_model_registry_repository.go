package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"GeoScan-App/internal/database"
	"GeoScan-App/internal/domain/model"
	"GeoScan-App/internal/domain/repository"
)

// geoscanModelsTable モデルレジストリのテーブル名
const geoscanModelsTable = "geoscan_models"

type SupabaseModelRegistryRepository struct {
	client *database.SupabaseClient
}

func NewSupabaseModelRegistryRepository(client *database.SupabaseClient) repository.ModelRegistryRepository {
	return &SupabaseModelRegistryRepository{
		client: client,
	}
}

// recordFromModel モデルをレジストリ行に変換する（Shapeは GeoJSON 文字列として格納）
func recordFromModel(m *model.GeoScanModel) (*model.GeoScanModelRecord, error) {
	geoJSON, err := ShapeToGeoJSON(m.Shape)
	if err != nil {
		return nil, err
	}
	return &model.GeoScanModelRecord{
		UID:           m.UID,
		Epsilon:       m.Params.Epsilon,
		Layers:        m.Params.Layers,
		PredictionCol: m.Params.PredictionCol,
		LatitudeCol:   m.Params.LatitudeCol,
		LongitudeCol:  m.Params.LongitudeCol,
		Class:         model.GeoScanModelClass,
		NumClusters:   len(m.Shape.Clusters),
		GeoJSON:       geoJSON,
		CreatedAt:     m.CreatedAt,
	}, nil
}

// modelFromRecord レジストリ行からモデルを再構築する
func modelFromRecord(record *model.GeoScanModelRecord) (*model.GeoScanModel, error) {
	shape, err := ShapeFromGeoJSON(record.GeoJSON)
	if err != nil {
		return nil, fmt.Errorf("モデル %s: %v: %w", record.UID, err, model.ErrCorruptData)
	}
	return &model.GeoScanModel{
		UID:   record.UID,
		Shape: shape,
		Params: model.GeoScanParams{
			Epsilon:       record.Epsilon,
			Layers:        record.Layers,
			PredictionCol: record.PredictionCol,
			LatitudeCol:   record.LatitudeCol,
			LongitudeCol:  record.LongitudeCol,
		},
		CreatedAt: record.CreatedAt,
	}, nil
}

func (r *SupabaseModelRegistryRepository) Save(ctx context.Context, m *model.GeoScanModel) error {
	record, err := recordFromModel(m)
	if err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("モデルレコードのJSONマーシャル失敗: %w", err)
	}

	_, _, err = r.client.GetClient().From(geoscanModelsTable).Insert(string(data), false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("モデル %s の登録失敗: %w", m.UID, err)
	}

	return nil
}

func (r *SupabaseModelRegistryRepository) GetByUID(ctx context.Context, uid string) (*model.GeoScanModel, error) {
	var records []model.GeoScanModelRecord
	data, count, err := r.client.GetClient().From(geoscanModelsTable).Select("*", "exact", false).Eq("uid", uid).Execute()
	if err != nil {
		return nil, fmt.Errorf("モデルデータの取得失敗: %w", err)
	}
	_ = count // countは使わないが、構文エラーを避けるため

	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, fmt.Errorf("モデルデータのJSONアンマーシャル失敗: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("モデル %s: %w", uid, model.ErrModelNotFound)
	}

	return modelFromRecord(&records[0])
}

func (r *SupabaseModelRegistryRepository) GetAll(ctx context.Context) ([]model.ModelSummary, error) {
	var records []model.GeoScanModelRecord
	data, count, err := r.client.GetClient().From(geoscanModelsTable).Select("uid,epsilon,layers,num_clusters,created_at", "exact", false).Execute()
	if err != nil {
		return nil, fmt.Errorf("モデル一覧の取得失敗: %w", err)
	}
	_ = count

	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, fmt.Errorf("モデル一覧のJSONアンマーシャル失敗: %w", err)
	}

	summaries := make([]model.ModelSummary, 0, len(records))
	for i := range records {
		summaries = append(summaries, records[i].ToSummary())
	}
	return summaries, nil
}

func (r *SupabaseModelRegistryRepository) Delete(ctx context.Context, uid string) error {
	_, _, err := r.client.GetClient().From(geoscanModelsTable).Delete("", "").Eq("uid", uid).Execute()
	if err != nil {
		return fmt.Errorf("モデル %s の削除失敗: %w", uid, err)
	}
	return nil
}

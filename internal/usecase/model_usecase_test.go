package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"GeoScan-App/internal/domain/model"
	"GeoScan-App/internal/domain/service"
	repoimpl "GeoScan-App/internal/repository"
)

// fakeSpatialIndex テスト用の決定的な空間インデックス
type fakeSpatialIndex struct{}

func (f *fakeSpatialIndex) CellID(lat, lng float64, resolution int) (string, error) {
	return fmt.Sprintf("%x", int(lat*100)*100000+int(lng*100)), nil
}

func (f *fakeSpatialIndex) PolyFill(points []model.LatLng, resolution int, layers int) ([]string, error) {
	cells := make([]string, 0, len(points)*(layers+1))
	for _, p := range points {
		cell, _ := f.CellID(p.Lat, p.Lng, resolution)
		cells = append(cells, cell)
		for layer := 1; layer <= layers; layer++ {
			cells = append(cells, fmt.Sprintf("%s-r%d", cell, layer))
		}
	}
	return cells, nil
}

func (f *fakeSpatialIndex) CellCenter(cellID string) (model.LatLng, error) {
	return model.LatLng{}, nil
}

// memoryRegistry インメモリのモデルレジストリ
type memoryRegistry struct {
	models map[string]*model.GeoScanModel
}

func newMemoryRegistry() *memoryRegistry {
	return &memoryRegistry{models: map[string]*model.GeoScanModel{}}
}

func (r *memoryRegistry) Save(ctx context.Context, m *model.GeoScanModel) error {
	r.models[m.UID] = m
	return nil
}

func (r *memoryRegistry) GetByUID(ctx context.Context, uid string) (*model.GeoScanModel, error) {
	m, ok := r.models[uid]
	if !ok {
		return nil, fmt.Errorf("モデル %s: %w", uid, model.ErrModelNotFound)
	}
	return m, nil
}

func (r *memoryRegistry) GetAll(ctx context.Context) ([]model.ModelSummary, error) {
	summaries := make([]model.ModelSummary, 0, len(r.models))
	for _, m := range r.models {
		summaries = append(summaries, model.ModelSummary{
			UID:         m.UID,
			Epsilon:     m.Params.Epsilon,
			Layers:      m.Params.Layers,
			NumClusters: len(m.Shape.Clusters),
			CreatedAt:   m.CreatedAt,
		})
	}
	return summaries, nil
}

func (r *memoryRegistry) Delete(ctx context.Context, uid string) error {
	delete(r.models, uid)
	return nil
}

func newTestModelUseCase(registry *memoryRegistry) ModelUseCase {
	index := &fakeSpatialIndex{}
	return NewModelUseCase(
		registry,
		repoimpl.NewFileModelStoreRepository(),
		service.NewPrecisionService(),
		service.NewTileService(index),
	)
}

func sampleClusters() []model.Cluster {
	return []model.Cluster{
		{
			ID: "A",
			Points: []model.LatLng{
				{Lat: 0, Lng: 0},
				{Lat: 0, Lng: 1},
				{Lat: 1, Lng: 1},
				{Lat: 1, Lng: 0},
			},
		},
	}
}

func TestModelUseCase_RegisterModel(t *testing.T) {
	ctx := context.Background()

	t.Run("uid未指定なら生成され、カラム名にデフォルトが入る", func(t *testing.T) {
		registry := newMemoryRegistry()
		u := newTestModelUseCase(registry)

		m, err := u.RegisterModel(ctx, &model.RegisterModelRequest{
			Epsilon:  500,
			Clusters: sampleClusters(),
		})
		assert.NoError(t, err)
		assert.NotEmpty(t, m.UID)
		assert.Equal(t, model.DefaultPredictionCol, m.Params.PredictionCol)
		assert.Equal(t, model.DefaultLatitudeCol, m.Params.LatitudeCol)
		assert.Equal(t, model.DefaultLongitudeCol, m.Params.LongitudeCol)

		stored, err := registry.GetByUID(ctx, m.UID)
		assert.NoError(t, err)
		assert.Equal(t, m.Shape, stored.Shape)
	})

	t.Run("epsilonが不正なら登録されない", func(t *testing.T) {
		registry := newMemoryRegistry()
		u := newTestModelUseCase(registry)

		_, err := u.RegisterModel(ctx, &model.RegisterModelRequest{
			Epsilon:  0.1,
			Clusters: sampleClusters(),
		})
		assert.ErrorIs(t, err, model.ErrEpsilonTooSmall)
		assert.Empty(t, registry.models)
	})

	t.Run("クラスタID重複は登録されない", func(t *testing.T) {
		registry := newMemoryRegistry()
		u := newTestModelUseCase(registry)

		clusters := append(sampleClusters(), sampleClusters()...)
		_, err := u.RegisterModel(ctx, &model.RegisterModelRequest{
			Epsilon:  500,
			Clusters: clusters,
		})
		assert.ErrorIs(t, err, model.ErrInvalidShape)
		assert.Empty(t, registry.models)
	})
}

func TestModelUseCase_ExportImport(t *testing.T) {
	ctx := context.Background()
	registry := newMemoryRegistry()
	u := newTestModelUseCase(registry)

	m, err := u.RegisterModel(ctx, &model.RegisterModelRequest{
		UID:      "export_model",
		Epsilon:  500,
		Layers:   1,
		Clusters: sampleClusters(),
	})
	assert.NoError(t, err)

	path := filepath.Join(t.TempDir(), "artifacts")

	t.Run("export→削除→importでレジストリに復元される", func(t *testing.T) {
		assert.NoError(t, u.ExportModel(ctx, m.UID, path, false))
		assert.NoError(t, u.DeleteModel(ctx, m.UID))

		_, err := u.GetModel(ctx, m.UID)
		assert.ErrorIs(t, err, model.ErrModelNotFound)

		restored, err := u.ImportModel(ctx, path)
		assert.NoError(t, err)
		assert.Equal(t, m.UID, restored.UID)
		assert.Equal(t, m.Params, restored.Params)
		assert.Equal(t, m.Shape, restored.Shape)

		stored, err := u.GetModel(ctx, m.UID)
		assert.NoError(t, err)
		assert.Equal(t, m.Shape, stored.Shape)
	})

	t.Run("overwriteなしの再exportはErrPathExists", func(t *testing.T) {
		err := u.ExportModel(ctx, m.UID, path, false)
		assert.ErrorIs(t, err, model.ErrPathExists)
	})

	t.Run("存在しないモデルのexportはErrModelNotFound", func(t *testing.T) {
		err := u.ExportModel(ctx, "unknown", filepath.Join(t.TempDir(), "x"), false)
		assert.ErrorIs(t, err, model.ErrModelNotFound)
	})
}

func TestModelUseCase_GetTiles(t *testing.T) {
	ctx := context.Background()
	registry := newMemoryRegistry()
	u := newTestModelUseCase(registry)

	m, err := u.RegisterModel(ctx, &model.RegisterModelRequest{
		UID:      "tiles_model",
		Epsilon:  500,
		Layers:   1,
		Clusters: sampleClusters(),
	})
	assert.NoError(t, err)

	t.Run("layers=-1でモデル設定値が使われる", func(t *testing.T) {
		defaulted, err := u.GetTiles(ctx, m.UID, -1)
		assert.NoError(t, err)
		explicit, err := u.GetTiles(ctx, m.UID, 1)
		assert.NoError(t, err)
		assert.Equal(t, explicit, defaulted)
	})

	t.Run("layersを上げるとタイルは減らない", func(t *testing.T) {
		base, err := u.GetTiles(ctx, m.UID, 0)
		assert.NoError(t, err)
		dilated, err := u.GetTiles(ctx, m.UID, 2)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, len(dilated), len(base))
	})
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"GeoScan-App/internal/domain/model"
)

func newTestModel(clusters []model.Cluster) *model.GeoScanModel {
	return model.NewGeoScanModel("test_model", &model.Shape{Clusters: clusters}, model.GeoScanParams{
		Epsilon:       500,
		Layers:        0,
		PredictionCol: "prediction",
		LatitudeCol:   "latitude",
		LongitudeCol:  "longitude",
	})
}

func newInferenceServiceWithIndex(index *stubSpatialIndex) *InferenceService {
	return NewInferenceService(index, NewPrecisionService(), NewTileService(index))
}

func TestInferenceService_Transform(t *testing.T) {
	ctx := context.Background()

	index := &stubSpatialIndex{
		cells: map[string]string{
			coordKey(0.5, 0.5): "1a",
		},
		polys: map[string][]string{
			coordKey(0, 0): {"1a"},
		},
	}
	s := newInferenceServiceWithIndex(index)
	m := newTestModel([]model.Cluster{squareCluster("A", 0, 0)})

	t.Run("左外部結合：一致行に予測、不一致行はそのまま", func(t *testing.T) {
		rows := []model.Row{
			{"latitude": 0.5, "longitude": 0.5, "id": 1, "note": "inside"},
			{"latitude": 50.0, "longitude": 50.0, "id": 2, "note": "outside"},
		}

		response, err := s.Transform(ctx, m, rows)
		assert.NoError(t, err)
		assert.Equal(t, 2, response.RowCount)
		assert.Equal(t, 1, response.MatchedCount)
		assert.Len(t, response.Rows, 2)

		// 一致行
		assert.Equal(t, "A", response.Rows[0]["prediction"])
		assert.Equal(t, 1, response.Rows[0]["id"])
		assert.Equal(t, "inside", response.Rows[0]["note"])

		// 不一致行は予測カラムなしで保持される（行は落とさない）
		_, hasPrediction := response.Rows[1]["prediction"]
		assert.False(t, hasPrediction)
		assert.Equal(t, 2, response.Rows[1]["id"])
		assert.Equal(t, "outside", response.Rows[1]["note"])
	})

	t.Run("入力行は変更されない", func(t *testing.T) {
		rows := []model.Row{{"latitude": 0.5, "longitude": 0.5, "id": 1}}

		_, err := s.Transform(ctx, m, rows)
		assert.NoError(t, err)

		_, mutated := rows[0]["prediction"]
		assert.False(t, mutated, "入力行に予測カラムが書き込まれています")
		assert.Len(t, rows[0], 3)
	})

	t.Run("行順序が保持される", func(t *testing.T) {
		rows := make([]model.Row, 2000)
		for i := range rows {
			rows[i] = model.Row{"latitude": 0.5, "longitude": 0.5, "seq": i}
		}

		response, err := s.Transform(ctx, m, rows)
		assert.NoError(t, err)
		assert.Len(t, response.Rows, 2000)
		for i, row := range response.Rows {
			if row["seq"] != i {
				t.Fatalf("行%dの順序が崩れています: seq=%v", i, row["seq"])
			}
		}
	})

	t.Run("緯度経度カラム欠落はエラー", func(t *testing.T) {
		_, err := s.Transform(ctx, m, []model.Row{{"id": 1}})
		assert.Error(t, err)
	})

	t.Run("緯度経度カラムが数値でない場合はエラー", func(t *testing.T) {
		_, err := s.Transform(ctx, m, []model.Row{{"latitude": "35.0", "longitude": 135.0}})
		assert.Error(t, err)
	})

	t.Run("epsilonが不正なモデルはConfigurationError", func(t *testing.T) {
		badModel := newTestModel(nil)
		badModel.Params.Epsilon = 0.1
		_, err := s.Transform(ctx, badModel, []model.Row{{"latitude": 0.5, "longitude": 0.5}})
		assert.ErrorIs(t, err, model.ErrEpsilonTooSmall)
	})
}

func TestInferenceService_TieBreak(t *testing.T) {
	ctx := context.Background()

	// クラスタAとBのタイル集合が同じセル "1b" を含む
	// セル中心はBの重心に近い位置に置く
	index := &stubSpatialIndex{
		cells: map[string]string{
			coordKey(10.5, 10.5): "1b",
		},
		polys: map[string][]string{
			coordKey(0, 0):   {"1a", "1b"},
			coordKey(10, 10): {"1b", "2c"},
		},
		centers: map[string]model.LatLng{
			"1b": {Lat: 10.5, Lng: 10.5},
		},
	}
	s := newInferenceServiceWithIndex(index)

	clusterA := squareCluster("A", 0, 0)   // 重心 (0.5, 0.5)
	clusterB := squareCluster("B", 10, 10) // 重心 (10.5, 10.5) セル中心と一致

	rows := []model.Row{{"latitude": 10.5, "longitude": 10.5, "id": 1}}

	t.Run("曖昧なセルは重心が近いクラスタに割り当てられる", func(t *testing.T) {
		m := newTestModel([]model.Cluster{clusterA, clusterB})
		response, err := s.Transform(ctx, m, rows)
		assert.NoError(t, err)
		assert.Equal(t, "B", response.Rows[0]["prediction"])
	})

	t.Run("クラスタ順に依存せず決定的", func(t *testing.T) {
		m := newTestModel([]model.Cluster{clusterB, clusterA})
		response, err := s.Transform(ctx, m, rows)
		assert.NoError(t, err)
		assert.Equal(t, "B", response.Rows[0]["prediction"])

		// 行数は常に入力と同じ（結合キーの一意化により行が増えない）
		assert.Equal(t, 1, response.RowCount)
		assert.Len(t, response.Rows, 1)
	})
}

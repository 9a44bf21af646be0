package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"GeoScan-App/internal/domain/model"
)

func TestShapeGeoJSONRoundTrip(t *testing.T) {
	t.Run("クラスタの頂点順とIDが正確にラウンドトリップする", func(t *testing.T) {
		shape := &model.Shape{
			Clusters: []model.Cluster{
				{
					ID: "A",
					Points: []model.LatLng{
						{Lat: 0, Lng: 0},
						{Lat: 0, Lng: 1},
						{Lat: 1, Lng: 1},
						{Lat: 1, Lng: 0},
					},
				},
				{
					ID: "B",
					Points: []model.LatLng{
						{Lat: 35.0123456, Lng: 135.7654321},
						{Lat: 35.02, Lng: 135.77},
						{Lat: 35.03, Lng: 135.75},
					},
				},
			},
		}

		text, err := ShapeToGeoJSON(shape)
		assert.NoError(t, err)
		assert.True(t, strings.Contains(text, `"FeatureCollection"`))

		restored, err := ShapeFromGeoJSON(text)
		assert.NoError(t, err)
		assert.Equal(t, shape, restored)
	})

	t.Run("空のクラスタ集合もラウンドトリップする", func(t *testing.T) {
		shape := &model.Shape{Clusters: []model.Cluster{}}

		text, err := ShapeToGeoJSON(shape)
		assert.NoError(t, err)

		restored, err := ShapeFromGeoJSON(text)
		assert.NoError(t, err)
		assert.Empty(t, restored.Clusters)
	})

	t.Run("閉じたリングもそのまま保持される", func(t *testing.T) {
		shape := &model.Shape{
			Clusters: []model.Cluster{
				{
					ID: "closed",
					Points: []model.LatLng{
						{Lat: 0, Lng: 0},
						{Lat: 0, Lng: 1},
						{Lat: 1, Lng: 1},
						{Lat: 0, Lng: 0},
					},
				},
			},
		}

		text, err := ShapeToGeoJSON(shape)
		assert.NoError(t, err)

		restored, err := ShapeFromGeoJSON(text)
		assert.NoError(t, err)
		assert.Equal(t, shape, restored)
	})
}

func TestShapeFromGeoJSON_InvalidInput(t *testing.T) {
	t.Run("JSONとして不正な文字列はエラー", func(t *testing.T) {
		_, err := ShapeFromGeoJSON("not a geojson")
		assert.Error(t, err)
	})

	t.Run("clusterプロパティ欠落はエラー", func(t *testing.T) {
		text := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}]}`
		_, err := ShapeFromGeoJSON(text)
		assert.Error(t, err)
	})

	t.Run("Polygon以外のジオメトリはエラー", func(t *testing.T) {
		text := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"cluster":"A"},"geometry":{"type":"Point","coordinates":[0,0]}}]}`
		_, err := ShapeFromGeoJSON(text)
		assert.Error(t, err)
	})
}

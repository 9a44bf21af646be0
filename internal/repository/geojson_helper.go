package repository

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"GeoScan-App/internal/domain/model"
)

// clusterIDProperty GeoJSON FeatureにクラスタIDを載せるプロパティ名
const clusterIDProperty = "cluster"

// ShapeToGeoJSON ShapeをGeoJSON FeatureCollection文字列に変換する
// クラスタ1件がFeature1件（Polygon）に対応し、頂点列は入力順のまま書き出す
func ShapeToGeoJSON(shape *model.Shape) (string, error) {
	fc := geojson.NewFeatureCollection()

	for _, cluster := range shape.Clusters {
		ring := make(orb.Ring, 0, len(cluster.Points))
		for _, p := range cluster.Points {
			// GeoJSONでは [lng, lat]
			ring = append(ring, orb.Point{p.Lng, p.Lat})
		}

		feature := geojson.NewFeature(orb.Polygon{ring})
		feature.Properties[clusterIDProperty] = cluster.ID
		fc.Append(feature)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("ShapeのGeoJSONマーシャル失敗: %w", err)
	}
	return string(data), nil
}

// ShapeFromGeoJSON GeoJSON FeatureCollection文字列からShapeを再構築する
// ShapeToGeoJSONと正確にラウンドトリップする（頂点順・数値をそのまま保持）
func ShapeFromGeoJSON(text string) (*model.Shape, error) {
	fc, err := geojson.UnmarshalFeatureCollection([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("GeoJSONのパース失敗: %w", err)
	}

	clusters := make([]model.Cluster, 0, len(fc.Features))
	for i, feature := range fc.Features {
		polygon, ok := feature.Geometry.(orb.Polygon)
		if !ok {
			return nil, fmt.Errorf("feature %d: Polygonではありません (%s)", i, feature.Geometry.GeoJSONType())
		}
		if len(polygon) == 0 {
			return nil, fmt.Errorf("feature %d: ポリゴンにリングがありません", i)
		}

		id, ok := feature.Properties[clusterIDProperty].(string)
		if !ok || id == "" {
			return nil, fmt.Errorf("feature %d: %qプロパティがありません", i, clusterIDProperty)
		}

		outer := polygon[0]
		points := make([]model.LatLng, 0, len(outer))
		for _, p := range outer {
			points = append(points, model.LatLng{Lat: p.Lat(), Lng: p.Lon()})
		}

		clusters = append(clusters, model.Cluster{ID: id, Points: points})
	}

	return &model.Shape{Clusters: clusters}, nil
}

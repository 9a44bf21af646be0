package repository

import (
	"GeoScan-App/internal/domain/model"
)

// SpatialIndexProvider は離散グローバルグリッド（H3等）への変換を担うプロバイダインターフェース
// セルIDは小文字16進文字列で、推論時の結合キーとしてそのまま使用される
type SpatialIndexProvider interface {
	// CellID は座標を指定解像度のセルIDに変換する
	CellID(lat, lng float64, resolution int) (string, error)

	// PolyFill はポリゴン境界と交差するセルID集合を返す
	// layers > 0 の場合は近傍リングをlayers段ぶん加えて膨張させる
	PolyFill(points []model.LatLng, resolution int, layers int) ([]string, error)

	// CellCenter はセルの中心座標を返す
	CellCenter(cellID string) (model.LatLng, error)
}

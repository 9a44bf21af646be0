package model

// LatLng 緯度経度を表す基本的な型（セル計算やポリゴン頂点で使用）
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

package model

// Cluster GEOSCANが学習したひとつのクラスタ
// Pointsはポリゴン境界の頂点列（末尾が先頭と一致しない場合は暗黙的に閉じる）
type Cluster struct {
	ID     string   `json:"id"`     // モデル内で一意なクラスタID
	Points []LatLng `json:"points"` // 境界ポリゴンの頂点列（順序保持）
}

// Shape 学習済みモデルの本体（全クラスタの集合）
// 構築後は不変として扱う。コピーは参照共有で問題ない
type Shape struct {
	Clusters []Cluster `json:"clusters"`
}

// Tile クラスタIDとH3セルIDの対応（推論時の結合キー）
// 永続化されない派生データで、呼び出しごとに再計算される
type Tile struct {
	ClusterID string `json:"cluster_id"`
	CellID    string `json:"cell_id"`
}

package service

import (
	"fmt"

	"GeoScan-App/internal/domain/model"
)

// hexEdgeLengthsM H3解像度ごとの平均六角形エッジ長（メートル）
// H3公式ドキュメント記載の定数。解像度0〜15
var hexEdgeLengthsM = [16]float64{
	1107712.591,
	418676.0055,
	158244.6558,
	59810.85794,
	22606.3794,
	8544.408276,
	3229.482772,
	1220.629759,
	461.354684,
	174.375668,
	65.907807,
	24.910561,
	9.415526,
	3.559893,
	1.348575,
	0.509713,
}

// PrecisionService epsilon（メートル）からH3解像度を導出する
// 純粋関数であり、学習時のタイル展開と推論時のセル計算で
// 同一の解像度を再利用しないと結合が成立しなくなる
type PrecisionService struct{}

// NewPrecisionService 新しいPrecisionServiceインスタンスを作成
func NewPrecisionService() *PrecisionService {
	return &PrecisionService{}
}

// SelectPrecision はセル対角長（エッジ長の2倍）がepsilon以下になる
// 最も粗い解像度を返す。解像度15でも満たせない場合はErrEpsilonTooSmall
func (s *PrecisionService) SelectPrecision(epsilon float64) (int, error) {
	if epsilon <= 0 {
		return 0, fmt.Errorf("epsilonは正の値が必要です (epsilon=%g): %w", epsilon, model.ErrEpsilonTooSmall)
	}
	for resolution := 0; resolution < len(hexEdgeLengthsM); resolution++ {
		if 2*hexEdgeLengthsM[resolution] <= epsilon {
			return resolution, nil
		}
	}
	return 0, fmt.Errorf("epsilon=%gm を満たす解像度がありません（最細解像度15の対角長 %.3fm）: %w",
		epsilon, 2*hexEdgeLengthsM[15], model.ErrEpsilonTooSmall)
}

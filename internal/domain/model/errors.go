package model

import "errors"

// エラー分類。呼び出し側は errors.Is で判定する
var (
	// ErrEpsilonTooSmall epsilonがH3最細解像度でも満たせない（設定エラー、リトライ不可）
	ErrEpsilonTooSmall = errors.New("epsilonを満たすH3解像度が存在しません")

	// ErrModelNotFound 指定されたモデルまたはアーティファクトが存在しない
	ErrModelNotFound = errors.New("モデルが見つかりません")

	// ErrCorruptData データアーティファクトが空または不正（ロード時に致命的）
	ErrCorruptData = errors.New("モデルデータが破損しています")

	// ErrPathExists 保存先パスが既に存在する（overwrite指定なし）
	ErrPathExists = errors.New("保存先パスが既に存在します")

	// ErrInvalidShape クラスタのポリゴンが不正（頂点3点未満、ID重複など）
	ErrInvalidShape = errors.New("クラスタ形状が不正です")

	// ErrJobNotFound 推論ジョブが存在しない（有効期限切れを含む）
	ErrJobNotFound = errors.New("推論ジョブが見つかりません")
)

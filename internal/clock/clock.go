// Package clock は擬似ネットワーク遅延の待機を抽象化する。
//
// セッション操作やチケット操作はバックエンドの代わりに固定時間待機してから結果を返す。
// 待機を Delayer として注入することで、テストでは待たずに即時完了させられる。
package clock

import "time"

// Delayer は擬似レイテンシの待機を提供する。
// 待機は中断できない。開始した操作は必ず再開して効果を適用する。
type Delayer interface {
	Delay(d time.Duration)
}

// Real は実時間で待機するDelayer。
type Real struct{}

// Delay はdだけスリープする。0以下の場合は即時に戻る。
func (Real) Delay(d time.Duration) {
	if d <= 0 {
		return
	}
	time.Sleep(d)
}

// Instant は待機しないDelayer。テストや遅延無効化設定で使用する。
type Instant struct{}

// Delay は何もしない。
func (Instant) Delay(time.Duration) {}

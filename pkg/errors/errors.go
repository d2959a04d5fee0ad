// Package errors はパイプライン全体のエラーハンドリングと警告システムを提供します。
// スキーマ不一致・不正値・ハイパーパラメータ検証などを構造化されたエラー型で表現し、
// cockroachdb/errors によるスタックトレースを付与します。
package errors

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("shelterml-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler は警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// DataConversionWarning は欠損値の補完などでデータが暗黙的に変換された場合の警告です。
type DataConversionWarning struct {
	FromType string
	ToType   string
	Reason   string
}

func (w *DataConversionWarning) Error() string {
	return fmt.Sprintf("data converted from %s to %s. Reason: %s", w.FromType, w.ToType, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DataConversionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("from_type", w.FromType).
		Str("to_type", w.ToType).
		Str("reason", w.Reason).
		Str("type", "DataConversionWarning")
}

// NewDataConversionWarning は新しいDataConversionWarningを作成します。
func NewDataConversionWarning(from, to, reason string) *DataConversionWarning {
	return &DataConversionWarning{FromType: from, ToType: to, Reason: reason}
}

// ===========================================================================
//
//	スキーマ・値のエラー型
//
// ===========================================================================

// SchemaError は入力ファイルに必要な列が存在しない場合のエラーです。
type SchemaError struct {
	Source string // ファイルパスまたはテーブル名
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("shelterml: schema error: %s is missing required column %q", e.Source, e.Column)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *SchemaError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("source", e.Source).
		Str("column", e.Column).
		Str("type", "SchemaError")
}

// NewSchemaError は新しいSchemaErrorを作成し、スタックトレースを付与します。
func NewSchemaError(source, column string) error {
	return errors.WithStack(&SchemaError{Source: source, Column: column})
}

// SchemaMismatchError は学習用と予測用の特徴量列が一致しない場合のエラーです。
// 列の並べ替えや削除で暗黙に解決してはいけません。
type SchemaMismatchError struct {
	OnlyLeft  []string // 左側（学習用）にしか存在しない列
	OnlyRight []string // 右側（予測用）にしか存在しない列
	Reordered bool     // 集合は一致するが順序が異なる
}

func (e *SchemaMismatchError) Error() string {
	if e.Reordered && len(e.OnlyLeft) == 0 && len(e.OnlyRight) == 0 {
		return "shelterml: schema mismatch: feature columns appear in a different order"
	}
	return fmt.Sprintf("shelterml: schema mismatch: only in train [%s], only in test [%s]",
		strings.Join(e.OnlyLeft, ", "), strings.Join(e.OnlyRight, ", "))
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *SchemaMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Strs("only_train", e.OnlyLeft).
		Strs("only_test", e.OnlyRight).
		Bool("reordered", e.Reordered).
		Str("type", "SchemaMismatchError")
}

// NewSchemaMismatchError は2つの列リストを比較してSchemaMismatchErrorを作成します。
// 列が完全に一致する場合はnilを返します。
func NewSchemaMismatchError(left, right []string) error {
	inLeft := make(map[string]bool, len(left))
	for _, c := range left {
		inLeft[c] = true
	}
	inRight := make(map[string]bool, len(right))
	for _, c := range right {
		inRight[c] = true
	}

	mismatch := &SchemaMismatchError{}
	for _, c := range left {
		if !inRight[c] {
			mismatch.OnlyLeft = append(mismatch.OnlyLeft, c)
		}
	}
	for _, c := range right {
		if !inLeft[c] {
			mismatch.OnlyRight = append(mismatch.OnlyRight, c)
		}
	}
	sort.Strings(mismatch.OnlyLeft)
	sort.Strings(mismatch.OnlyRight)

	if len(mismatch.OnlyLeft) == 0 && len(mismatch.OnlyRight) == 0 {
		if len(left) == len(right) {
			same := true
			for i := range left {
				if left[i] != right[i] {
					same = false
					break
				}
			}
			if same {
				return nil
			}
		}
		mismatch.Reordered = true
	}
	return errors.WithStack(mismatch)
}

// MalformedValueError は値を解釈できない場合のエラーです（年齢文字列、日時、ラベルなど）。
type MalformedValueError struct {
	Column string
	Row    string // 行の識別子（ID）
	Value  string
	Reason string
}

func (e *MalformedValueError) Error() string {
	if e.Row != "" {
		return fmt.Sprintf("shelterml: malformed value in column %q (row %s): %q: %s", e.Column, e.Row, e.Value, e.Reason)
	}
	return fmt.Sprintf("shelterml: malformed value in column %q: %q: %s", e.Column, e.Value, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *MalformedValueError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("column", e.Column).
		Str("row", e.Row).
		Str("value", e.Value).
		Str("reason", e.Reason).
		Str("type", "MalformedValueError")
}

// NewMalformedValueError は新しいMalformedValueErrorを作成し、スタックトレースを付与します。
func NewMalformedValueError(column, value, reason string) error {
	return errors.WithStack(&MalformedValueError{Column: column, Value: value, Reason: reason})
}

// WithRow はMalformedValueErrorに行IDを設定します。他のエラーはそのまま返します。
func WithRow(err error, row string) error {
	var mv *MalformedValueError
	if errors.As(err, &mv) && mv.Row == "" {
		mv.Row = row
	}
	return err
}

// ===========================================================================
//
//	モデル関連のエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で予測を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("shelterml: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("shelterml: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("shelterml: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ModelError は機械学習モデルに関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("shelterml: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("shelterml: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// NaN、Inf などを検出します。
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("shelterml: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	return errors.WithStack(&NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")
)

package match

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/sportz/internal/model"
	"github.com/hitoshi/sportz/internal/security"
)

// CreateInput は試合作成リクエストのボディ。
// スコアは省略可能で、省略時は0として扱う。上限はMaxScore。
type CreateInput struct {
	Sport     string `json:"sport" validate:"max=64"`
	HomeTeam  string `json:"homeTeam" validate:"max=128"`
	AwayTeam  string `json:"awayTeam" validate:"max=128"`
	StartTime string `json:"startTime" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndTime   string `json:"endTime" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	HomeScore *int   `json:"homeScore" validate:"omitnil,gte=0,lte=9999"`
	AwayScore *int   `json:"awayScore" validate:"omitnil,gte=0,lte=9999"`
}

// MaxScore はスコアとして受け付ける最大値。
// ストアのINTEGER列に収まり、現実の試合で到達しない値に制限する。
const MaxScore = 9999

// ListInput は試合一覧のクエリパラメータ。
type ListInput struct {
	Limit *int `json:"limit" validate:"omitnil,gt=0"`
}

// Draft はバリデーション済みの試合作成内容。
// Validator.ValidateCreate が成功した場合にのみ生成される。
type Draft struct {
	Sport     string
	HomeTeam  string
	AwayTeam  string
	StartTime time.Time
	EndTime   time.Time
	HomeScore int
	AwayScore int
}

// Validator はリクエストの形状を検証する。
// validator.Validate は構造体ごとのキャッシュを持つため、1インスタンスを共有して使う。
type Validator struct {
	validate  *validator.Validate
	sanitizer security.TextSanitizer
}

// NewValidator はValidatorを生成する。
// エラーのフィールド名にはjsonタグの名前を使用する。
func NewValidator(sanitizer security.TextSanitizer) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		validate:  v,
		sanitizer: sanitizer,
	}
}

// DecodeCreateInput はJSONボディをCreateInputにデコードする。
// JSONとして解釈できない場合はフィールド単位の違反を含むAPIErrorを返す。
func DecodeCreateInput(body io.Reader) (CreateInput, error) {
	var in CreateInput

	dec := json.NewDecoder(body)
	if err := dec.Decode(&in); err != nil {
		return CreateInput{}, model.NewInvalidMatchDataError([]model.FieldViolation{decodeViolation(err)})
	}
	if dec.More() {
		return CreateInput{}, model.NewInvalidMatchDataError([]model.FieldViolation{{
			Field:   "body",
			Message: "must contain a single JSON object",
		}})
	}

	return in, nil
}

// decodeViolation はjsonデコードエラーを違反内容に変換する。
func decodeViolation(err error) model.FieldViolation {
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError

	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return model.FieldViolation{Field: typeErr.Field, Message: "must be " + describeKind(typeErr.Type.Kind())}
	case errors.As(err, &typeErr):
		return model.FieldViolation{Field: "body", Message: "must be a JSON object"}
	case errors.As(err, &maxErr):
		return model.FieldViolation{Field: "body", Message: fmt.Sprintf("must not exceed %d bytes", maxErr.Limit)}
	case errors.Is(err, io.EOF):
		return model.FieldViolation{Field: "body", Message: "is required"}
	default:
		return model.FieldViolation{Field: "body", Message: "must be valid JSON"}
	}
}

func describeKind(k reflect.Kind) string {
	switch k {
	case reflect.Int, reflect.Int64, reflect.Int32, reflect.Pointer:
		return "an integer"
	case reflect.String:
		return "a string"
	default:
		return "a " + k.String()
	}
}

// ValidateCreate はCreateInputを検証し、成功した場合にのみDraftを返す。
// 失敗時は違反フィールドの一覧を含むAPIErrorを返し、Draftはnilとなる。
func (v *Validator) ValidateCreate(in CreateInput) (*Draft, error) {
	in.Sport = v.sanitizer.Sanitize(in.Sport)
	in.HomeTeam = v.sanitizer.Sanitize(in.HomeTeam)
	in.AwayTeam = v.sanitizer.Sanitize(in.AwayTeam)

	if err := v.validate.Struct(in); err != nil {
		violations, convErr := toViolations(err)
		if convErr != nil {
			return nil, convErr
		}
		return nil, model.NewInvalidMatchDataError(violations)
	}

	start, err := time.Parse(time.RFC3339, in.StartTime)
	if err != nil {
		return nil, model.NewInvalidMatchDataError([]model.FieldViolation{{Field: "startTime", Message: messageFor("datetime", "")}})
	}
	end, err := time.Parse(time.RFC3339, in.EndTime)
	if err != nil {
		return nil, model.NewInvalidMatchDataError([]model.FieldViolation{{Field: "endTime", Message: messageFor("datetime", "")}})
	}
	if !end.After(start) {
		return nil, model.NewInvalidMatchDataError([]model.FieldViolation{{Field: "endTime", Message: "must be after startTime"}})
	}

	return &Draft{
		Sport:     in.Sport,
		HomeTeam:  in.HomeTeam,
		AwayTeam:  in.AwayTeam,
		StartTime: start,
		EndTime:   end,
		HomeScore: derefOr(in.HomeScore, 0),
		AwayScore: derefOr(in.AwayScore, 0),
	}, nil
}

// ParseListQuery はクエリパラメータからListInputを構築し検証する。
// limitが指定されている場合は正の整数でなければならない。
func (v *Validator) ParseListQuery(query url.Values) (ListInput, error) {
	var in ListInput

	if raw, ok := query["limit"]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(raw[0]))
		// 桁あふれする正の整数は上限指定とみなす
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) && !strings.HasPrefix(strings.TrimSpace(raw[0]), "-") {
			n, err = MaxListLimit, nil
		}
		if err != nil {
			return ListInput{}, model.NewInvalidQueryError([]model.FieldViolation{{
				Field:   "limit",
				Message: "must be a positive integer",
			}})
		}
		in.Limit = &n
	}

	if err := v.validate.Struct(in); err != nil {
		violations, convErr := toViolations(err)
		if convErr != nil {
			return ListInput{}, convErr
		}
		return ListInput{}, model.NewInvalidQueryError(violations)
	}

	return in, nil
}

// toViolations はvalidatorのエラーを違反内容の一覧に変換する。
// InvalidValidationError はプログラミングエラーのためそのまま返す。
func toViolations(err error) ([]model.FieldViolation, error) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, fmt.Errorf("validation could not run: %w", err)
	}

	violations := make([]model.FieldViolation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, model.FieldViolation{
			Field:   fe.Field(),
			Message: messageFor(fe.Tag(), fe.Param()),
		})
	}
	return violations, nil
}

func messageFor(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "datetime":
		return "must be an RFC 3339 timestamp"
	case "gt":
		if param == "0" {
			return "must be a positive integer"
		}
		return "must be greater than " + param
	case "gte":
		if param == "0" {
			return "must be a non-negative integer"
		}
		return "must be greater than or equal to " + param
	case "lte":
		return "must be at most " + param
	case "max":
		return "must be at most " + param + " characters"
	default:
		return fmt.Sprintf("failed on the %q rule", tag)
	}
}

func derefOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

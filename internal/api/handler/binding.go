package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/SayemTaher/university-management-server/internal/model"
	apperrors "github.com/SayemTaher/university-management-server/pkg/errors"
	"github.com/SayemTaher/university-management-server/pkg/querybuilder"
)

var registerOnce sync.Once

// RegisterValidators 向 gin 默认校验引擎注册自定义规则，并以 json 名作为字段路径
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("semester_name", func(fl validator.FieldLevel) bool {
			return model.SemesterName(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("semester_code", func(fl validator.FieldLevel) bool {
			return model.SemesterCode(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("month", func(fl validator.FieldLevel) bool {
			return model.IsMonth(fl.Field().String())
		})
		_ = v.RegisterValidation("registration_status", func(fl validator.FieldLevel) bool {
			return model.RegistrationStatus(fl.Field().String()).IsValid()
		})
	})
}

// bindJSON 绑定并校验请求体，失败时返回 Validation 错误（每个字段一条 errorSource）
func bindJSON(c *gin.Context, obj interface{}) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError

	switch {
	case errors.As(err, &verrs):
		sources := make([]apperrors.Source, 0, len(verrs))
		for _, fe := range verrs {
			sources = append(sources, apperrors.Source{Path: fe.Field(), Message: fieldMessage(fe)})
		}
		return apperrors.Validation("Validation Error", sources...)
	case errors.As(err, &typeErr):
		msg := fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type)
		return apperrors.Validation("Validation Error", apperrors.Source{Path: typeErr.Field, Message: msg})
	case errors.As(err, &maxErr):
		return apperrors.BadRequest("Request body too large")
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return apperrors.Validation("Invalid JSON body")
	default:
		return apperrors.Validation(err.Error())
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "semester_name":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), joinValues(model.SemesterNames))
	case "semester_code":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), joinValues(model.SemesterCodes))
	case "month":
		return fmt.Sprintf("%s must be a month name", fe.Field())
	case "registration_status":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), joinValues(model.RegistrationStatuses))
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// queryParams 将 URL 查询串转换为查询构建器的原始参数：单值为 string，重复键为 []string
func queryParams(c *gin.Context) querybuilder.Params {
	values := c.Request.URL.Query()
	params := make(querybuilder.Params, len(values))
	for k, v := range values {
		if len(v) == 1 {
			params[k] = v[0]
		} else {
			params[k] = v
		}
	}
	return params
}

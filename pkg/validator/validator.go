package validator

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	zhTranslations "github.com/go-playground/validator/v10/translations/zh"
)

// gin binding校验器的本地化配置

var (
	once  sync.Once
	trans ut.Translator
)

// LazyInitGinValidator 按语言初始化gin的validator翻译器
func LazyInitGinValidator(language string) {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		enLoc := en.New()
		zhLoc := zh.New()
		uni := ut.New(enLoc, enLoc, zhLoc)

		switch language {
		case "zh":
			trans, _ = uni.GetTranslator("zh")
			_ = zhTranslations.RegisterDefaultTranslations(v, trans)
		default:
			trans, _ = uni.GetTranslator("en")
			_ = enTranslations.RegisterDefaultTranslations(v, trans)
		}
	})
}

// Translate 把binding错误翻译成可读信息
func Translate(err error) string {
	if err == nil {
		return ""
	}
	if trans == nil {
		return err.Error()
	}
	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range errs {
			return e.Translate(trans)
		}
	}
	return err.Error()
}

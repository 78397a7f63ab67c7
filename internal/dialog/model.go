package dialog

import (
	"encoding/json"
	"fmt"

	"github.com/ricksxxx/valorant-store-bot/internal/domain/accounts"
)

// Step — шаг активного диалога. Каждый шаг — отдельный тип, несущий
// только уже собранные поля: состояние «ждём пароль без логина»
// просто невыразимо. Следующий шаг конструируется из предыдущего,
// встраивая его данные.
type Step interface {
	Name() StepName
}

type StepName string

const (
	// Мастер добавления аккаунта (админ)
	StepAccTitle   StepName = "acc:title"
	StepAccRank    StepName = "acc:rank"
	StepAccPrice   StepName = "acc:price"
	StepAccRegion  StepName = "acc:region"
	StepAccDesc    StepName = "acc:description"
	StepAccImage   StepName = "acc:image"
	StepAccLogin   StepName = "acc:login"
	StepAccPass    StepName = "acc:password"
	StepAccEmail   StepName = "acc:email"
	StepAccEmPass  StepName = "acc:email_password"
	StepAccInfo    StepName = "acc:info"
	StepAccConfirm StepName = "acc:confirm"

	// Заявка на буст (покупатель)
	StepBoostRegion StepName = "boost:region"
	StepBoostWishes StepName = "boost:wishes"
)

// AccTitleStep — ждём название аккаунта.
type AccTitleStep struct{}

// AccRankStep — ждём ранг.
type AccRankStep struct {
	Title string `json:"title"`
}

// AccPriceStep — ждём цену в рублях.
type AccPriceStep struct {
	AccRankStep
	Rank string `json:"rank"`
}

// AccRegionStep — ждём регион.
type AccRegionStep struct {
	AccPriceStep
	PriceRUB int64 `json:"price_rub"`
}

// AccDescStep — ждём описание.
type AccDescStep struct {
	AccRegionStep
	Region accounts.Region `json:"region"`
}

// AccImageStep — ждём URL изображения (или "-").
type AccImageStep struct {
	AccDescStep
	Description string `json:"description"`
}

// AccLoginStep — ждём логин.
type AccLoginStep struct {
	AccImageStep
	ImageURL string `json:"image_url"`
}

// AccPassStep — ждём пароль.
type AccPassStep struct {
	AccLoginStep
	Login string `json:"login"`
}

// AccEmailStep — ждём email (или "-").
type AccEmailStep struct {
	AccPassStep
	Password string `json:"password"`
}

// AccEmPassStep — ждём пароль от email (или "-").
type AccEmPassStep struct {
	AccEmailStep
	Email string `json:"email"`
}

// AccInfoStep — ждём доп. информацию: коды восстановления и т.п. (или "-").
type AccInfoStep struct {
	AccEmPassStep
	EmailPassword string `json:"email_password"`
}

// AccConfirmStep — все поля собраны, ждём подтверждения.
type AccConfirmStep struct {
	AccInfoStep
	AdditionalInfo string `json:"additional_info"`
}

// Draft собирает из подтверждённой формы черновик аккаунта.
func (s AccConfirmStep) Draft(addedBy int64) accounts.Draft {
	return accounts.Draft{
		Title:          s.Title,
		Rank:           s.Rank,
		Description:    s.Description,
		PriceRUB:       s.PriceRUB,
		Region:         s.Region,
		ImageURL:       s.ImageURL,
		Login:          s.Login,
		Password:       s.Password,
		Email:          s.Email,
		EmailPassword:  s.EmailPassword,
		AdditionalInfo: s.AdditionalInfo,
		AddedBy:        addedBy,
	}
}

// BoostRegionStep — ранги выбраны, ждём регион.
type BoostRegionStep struct {
	FromRank string `json:"from_rank"`
	ToRank   string `json:"to_rank"`
}

// BoostWishesStep — ждём пожелания к заказу (или "-").
type BoostWishesStep struct {
	BoostRegionStep
	Region string `json:"region"`
}

func (AccTitleStep) Name() StepName    { return StepAccTitle }
func (AccRankStep) Name() StepName     { return StepAccRank }
func (AccPriceStep) Name() StepName    { return StepAccPrice }
func (AccRegionStep) Name() StepName   { return StepAccRegion }
func (AccDescStep) Name() StepName     { return StepAccDesc }
func (AccImageStep) Name() StepName    { return StepAccImage }
func (AccLoginStep) Name() StepName    { return StepAccLogin }
func (AccPassStep) Name() StepName     { return StepAccPass }
func (AccEmailStep) Name() StepName    { return StepAccEmail }
func (AccEmPassStep) Name() StepName   { return StepAccEmPass }
func (AccInfoStep) Name() StepName     { return StepAccInfo }
func (AccConfirmStep) Name() StepName  { return StepAccConfirm }
func (BoostRegionStep) Name() StepName { return StepBoostRegion }
func (BoostWishesStep) Name() StepName { return StepBoostWishes }

type envelope struct {
	Step StepName        `json:"step"`
	Data json.RawMessage `json:"data"`
}

// Encode сериализует шаг вместе с именем варианта для хранения в БД.
func Encode(s Step) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Step: s.Name(), Data: data})
}

// Decode восстанавливает конкретный вариант шага по имени.
func Decode(raw []byte) (Step, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}

	var s Step
	switch env.Step {
	case StepAccTitle:
		s = &AccTitleStep{}
	case StepAccRank:
		s = &AccRankStep{}
	case StepAccPrice:
		s = &AccPriceStep{}
	case StepAccRegion:
		s = &AccRegionStep{}
	case StepAccDesc:
		s = &AccDescStep{}
	case StepAccImage:
		s = &AccImageStep{}
	case StepAccLogin:
		s = &AccLoginStep{}
	case StepAccPass:
		s = &AccPassStep{}
	case StepAccEmail:
		s = &AccEmailStep{}
	case StepAccEmPass:
		s = &AccEmPassStep{}
	case StepAccInfo:
		s = &AccInfoStep{}
	case StepAccConfirm:
		s = &AccConfirmStep{}
	case StepBoostRegion:
		s = &BoostRegionStep{}
	case StepBoostWishes:
		s = &BoostWishesStep{}
	default:
		return nil, fmt.Errorf("unknown dialog step %q", env.Step)
	}

	if err := json.Unmarshal(env.Data, s); err != nil {
		return nil, err
	}
	return deref(s), nil
}

// deref возвращает значение, а не указатель: дальше шаги передаются
// по значению в обработчик и не разделяются между сессиями.
func deref(s Step) Step {
	switch v := s.(type) {
	case *AccTitleStep:
		return *v
	case *AccRankStep:
		return *v
	case *AccPriceStep:
		return *v
	case *AccRegionStep:
		return *v
	case *AccDescStep:
		return *v
	case *AccImageStep:
		return *v
	case *AccLoginStep:
		return *v
	case *AccPassStep:
		return *v
	case *AccEmailStep:
		return *v
	case *AccEmPassStep:
		return *v
	case *AccInfoStep:
		return *v
	case *AccConfirmStep:
		return *v
	case *BoostRegionStep:
		return *v
	case *BoostWishesStep:
		return *v
	default:
		return s
	}
}

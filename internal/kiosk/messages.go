package kiosk

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"seniorkiosk/internal/models"
)

// FeedbackKind identifies a spoken phrase
type FeedbackKind string

const (
	FeedbackGreeting         FeedbackKind = "greeting"
	FeedbackVoiceAdded       FeedbackKind = "voice_added"
	FeedbackSoldOut          FeedbackKind = "sold_out"
	FeedbackSoldOutSelected  FeedbackKind = "sold_out_selected"
	FeedbackItemNotFound     FeedbackKind = "item_not_found"
	FeedbackNotUnderstood    FeedbackKind = "not_understood"
	FeedbackEmptyCart        FeedbackKind = "empty_cart"
	FeedbackAddFirst         FeedbackKind = "add_first"
	FeedbackOrderPlaced      FeedbackKind = "order_placed"
	FeedbackCartOrderPlaced  FeedbackKind = "cart_order_placed"
	FeedbackCheckoutFailed   FeedbackKind = "checkout_failed"
	FeedbackDetail           FeedbackKind = "detail"
	FeedbackTemperature      FeedbackKind = "temperature"
	FeedbackDetailAdded      FeedbackKind = "detail_added"
	FeedbackBackToMenu       FeedbackKind = "back_to_menu"
	FeedbackMoreMenu         FeedbackKind = "more_menu"
	FeedbackCartOpened       FeedbackKind = "cart_opened"
	FeedbackRemoved          FeedbackKind = "removed"
	FeedbackInvalidRemoval   FeedbackKind = "invalid_removal"
	FeedbackReturnHome       FeedbackKind = "return_home"
	FeedbackVoiceUnavailable FeedbackKind = "voice_unavailable"
)

// Feedback is what the kiosk says after a transition
type Feedback struct {
	Kind        FeedbackKind
	Item        models.MenuItem
	Temperature models.Temperature
	OrderNumber int
	PrepMinutes int
}

var printer = message.NewPrinter(language.Korean)

// FormatWon renders a price like 3,000원
func FormatWon(price int) string {
	return printer.Sprintf("%d원", price)
}

// Text renders the Korean phrase for f
func (f Feedback) Text() string {
	name := f.Item.Name
	switch f.Kind {
	case FeedbackGreeting:
		return "안녕하세요. 시니어 모드로 주문을 도와드릴게요. 무엇을 드시겠어요?"
	case FeedbackVoiceAdded:
		return fmt.Sprintf("%s %s를 담았습니다. 더 필요하시면 말씀해주세요.", f.Temperature.Label(), name)
	case FeedbackSoldOut:
		return fmt.Sprintf("죄송합니다. %s는 다 팔렸습니다.", name)
	case FeedbackSoldOutSelected:
		return fmt.Sprintf("%s는 품절입니다.", name)
	case FeedbackItemNotFound:
		return "메뉴를 찾지 못했습니다. 다시 말씀해 주세요."
	case FeedbackNotUnderstood:
		return "잘 못 들었습니다. 다시 말씀해 주세요."
	case FeedbackEmptyCart:
		return "장바구니가 비어있습니다. 메뉴를 먼저 골라주세요."
	case FeedbackAddFirst:
		return "메뉴를 먼저 담아주세요."
	case FeedbackOrderPlaced:
		return fmt.Sprintf("주문이 완료되었습니다. 주문번호는 %d번입니다. 약 %d분 후에 준비됩니다.", f.OrderNumber, f.PrepMinutes)
	case FeedbackCartOrderPlaced:
		return fmt.Sprintf("결제가 완료되었습니다. 주문번호는 %d번입니다. 약 %d분 후에 준비됩니다.", f.OrderNumber, f.PrepMinutes)
	case FeedbackCheckoutFailed:
		return "주문을 처리하지 못했습니다. 잠시 후 다시 시도해 주세요."
	case FeedbackDetail:
		return fmt.Sprintf("%s입니다. 가격은 %s입니다. 온도를 선택해주세요.", name, FormatWon(f.Item.Price))
	case FeedbackTemperature:
		if f.Temperature.OrDefault() == models.Ice {
			return "차가운것으로 선택했습니다."
		}
		return "따뜻한것으로 선택했습니다."
	case FeedbackDetailAdded:
		return fmt.Sprintf("%s %s를 장바구니에 담았습니다.", f.Temperature.Label(), name)
	case FeedbackBackToMenu:
		return "메뉴판으로 돌아갑니다."
	case FeedbackMoreMenu:
		return "메뉴를 더 고르러 갑니다."
	case FeedbackCartOpened:
		return "장바구니를 확인합니다."
	case FeedbackRemoved:
		return fmt.Sprintf("%s를 뺐습니다.", name)
	case FeedbackInvalidRemoval:
		return "빼실 메뉴를 찾지 못했습니다."
	case FeedbackReturnHome:
		return "처음 화면으로 돌아갑니다."
	case FeedbackVoiceUnavailable:
		return "이 기기에서는 음성 주문을 사용할 수 없습니다. 화면을 눌러 주문해 주세요."
	}
	return ""
}

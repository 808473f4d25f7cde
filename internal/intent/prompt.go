package intent

import (
	"fmt"
	"strings"

	"seniorkiosk/internal/catalog"
)

const instructionTemplate = `You are the voice assistant of a coffee shop kiosk used by elderly customers.
Classify the customer's Korean utterance into exactly one intent.

Menu: [%s]

Actions:
- ADD_ORDER: the customer names a drink to order (e.g. "아메리카노 주세요", "아이스 라떼 한 잔"). Set "item" to the menu name and "temperature" to "ICE" when an iced word (차가, 아이스, 시원) is present, otherwise "HOT".
- CHECKOUT: the customer wants to pay or finish ordering (결제, 계산, 주문 완료, 끝).
- GO_BACK: the customer wants to go back or cancel (뒤로, 취소, 돌아가).
- SELECT_HOT: the customer asks for the hot variant (따뜻, 뜨거, 핫).
- SELECT_ICE: the customer asks for the iced variant (차가, 아이스, 시원).
- ADD_TO_CART: the customer confirms the current drink (담아, 장바구니, 이걸로).
- UNKNOWN: anything else.

An utterance that names a menu drink is ADD_ORDER, with the temperature word extracted into "temperature",
unless it also contains a checkout, back or add-to-cart word.
Otherwise, when several apply, the first in this order wins: CHECKOUT, GO_BACK, SELECT_HOT, SELECT_ICE, ADD_TO_CART.
So "아이스 아메리카노 주세요" is ADD_ORDER with "ICE", while "아이스 아메리카노 담아줘" is SELECT_ICE.
For every action other than ADD_ORDER, "item" and "temperature" must be null.

Respond with a single JSON object and nothing else:
{"action": "<ACTION>", "item": "<menu name or null>", "temperature": "<HOT, ICE or null>"}`

// BuildInstruction renders the system instruction sent with every utterance
func BuildInstruction(c *catalog.Catalog) string {
	return fmt.Sprintf(instructionTemplate, strings.Join(c.Names(), ", "))
}

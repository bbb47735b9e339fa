package script

import (
	lua "github.com/Shopify/go-lua"
	"github.com/shopspring/decimal"
)

// decimalMeta names the metatable of decimal userdata. Damage amounts and
// stats cross into Lua as decimals so chained hooks keep exact arithmetic;
// plain Lua numbers mixed in are converted by their shortest representation.
const decimalMeta = "sacredcombat.decimal"

func registerDecimal(l *lua.State) {
	if lua.NewMetaTable(l, decimalMeta) {
		lua.SetFunctions(l, []lua.RegistryFunction{
			{Name: "__add", Function: decimalOp(decimal.Decimal.Add)},
			{Name: "__sub", Function: decimalOp(decimal.Decimal.Sub)},
			{Name: "__mul", Function: decimalOp(decimal.Decimal.Mul)},
			{Name: "__div", Function: decimalDiv},
			{Name: "__unm", Function: func(l *lua.State) int {
				pushDecimal(l, checkDecimal(l, 1).Neg())
				return 1
			}},
			{Name: "__eq", Function: func(l *lua.State) int {
				l.PushBoolean(checkDecimal(l, 1).Equal(checkDecimal(l, 2)))
				return 1
			}},
			{Name: "__lt", Function: func(l *lua.State) int {
				l.PushBoolean(checkDecimal(l, 1).LessThan(checkDecimal(l, 2)))
				return 1
			}},
			{Name: "__le", Function: func(l *lua.State) int {
				l.PushBoolean(checkDecimal(l, 1).LessThanOrEqual(checkDecimal(l, 2)))
				return 1
			}},
			{Name: "__tostring", Function: func(l *lua.State) int {
				l.PushString(checkDecimal(l, 1).String())
				return 1
			}},
			{Name: "__concat", Function: func(l *lua.State) int {
				l.PushString(concatPart(l, 1) + concatPart(l, 2))
				return 1
			}},
		}, 0)
	}
	l.Pop(1)

	l.Register("dec", func(l *lua.State) int {
		pushDecimal(l, checkDecimal(l, 1))
		return 1
	})
	l.Register("tonum", func(l *lua.State) int {
		l.PushNumber(checkDecimal(l, 1).InexactFloat64())
		return 1
	})
}

func decimalOp(op func(decimal.Decimal, decimal.Decimal) decimal.Decimal) lua.Function {
	return func(l *lua.State) int {
		pushDecimal(l, op(checkDecimal(l, 1), checkDecimal(l, 2)))
		return 1
	}
}

func decimalDiv(l *lua.State) int {
	a, b := checkDecimal(l, 1), checkDecimal(l, 2)
	if b.IsZero() {
		lua.Errorf(l, "decimal division by zero")
	}
	pushDecimal(l, a.Div(b))
	return 1
}

func pushDecimal(l *lua.State, d decimal.Decimal) {
	l.PushUserData(d)
	lua.SetMetaTableNamed(l, decimalMeta)
}

// toDecimal reads a decimal userdata, a number or a numeric string.
func toDecimal(l *lua.State, index int) (decimal.Decimal, bool) {
	switch l.TypeOf(index) {
	case lua.TypeUserData:
		d, ok := lua.TestUserData(l, index, decimalMeta).(decimal.Decimal)
		return d, ok
	case lua.TypeNumber:
		n, _ := l.ToNumber(index)
		return decimal.NewFromFloat(n), true
	case lua.TypeString:
		s, _ := l.ToString(index)
		d, err := decimal.NewFromString(s)
		return d, err == nil
	default:
		return decimal.Decimal{}, false
	}
}

func checkDecimal(l *lua.State, index int) decimal.Decimal {
	d, ok := toDecimal(l, index)
	if !ok {
		lua.ArgumentError(l, index, "decimal expected, got "+lua.TypeNameOf(l, index))
	}
	return d
}

func concatPart(l *lua.State, index int) string {
	if d, ok := toDecimal(l, index); ok && l.TypeOf(index) == lua.TypeUserData {
		return d.String()
	}
	s, ok := l.ToString(index)
	if !ok {
		lua.ArgumentError(l, index, "cannot concatenate "+lua.TypeNameOf(l, index))
	}
	return s
}

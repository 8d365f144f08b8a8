// Package pi は円周率の任意精度計算を提供します。
package pi

import (
	"errors"
	"fmt"
	"math/big"
)

// guardDigits は丸め誤差を吸収するために余分に計算する桁数です。
const guardDigits = 10

// ErrInvalidDigits は桁数に 1 未満が指定された場合のエラーです。
var ErrInvalidDigits = errors.New("digits must be at least 1")

// Compute は小数点以下 n 桁に丸めた円周率を "3.14..." 形式で返します。
// 返却値は整数部を含めて n+1 桁の数字を持ちます。
func Compute(n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidDigits, n)
	}

	precision := n + guardDigits
	scaled := machin(precision)

	// 10^(precision-n) で割る前に半分を足して四捨五入する
	drop := pow10(precision - n)
	half := new(big.Int).Quo(drop, big.NewInt(2))
	scaled.Add(scaled, half)
	scaled.Quo(scaled, drop)

	digits := scaled.String()
	if len(digits) != n+1 {
		return "", fmt.Errorf("unexpected digit count %d for n=%d", len(digits), n)
	}
	return digits[:1] + "." + digits[1:], nil
}

// machin は Machin の公式 π = 16·atan(1/5) − 4·atan(1/239) を
// 10^precision 倍した固定小数点整数として計算します。
func machin(precision int) *big.Int {
	unity := pow10(precision)
	a := arctanInv(5, unity)
	b := arctanInv(239, unity)
	a.Mul(a, big.NewInt(16))
	b.Mul(b, big.NewInt(4))
	return a.Sub(a, b)
}

// arctanInv は atan(1/x)·unity を級数展開で求めます。
func arctanInv(x int64, unity *big.Int) *big.Int {
	sum := new(big.Int)
	xx := big.NewInt(x * x)
	power := new(big.Int).Quo(unity, big.NewInt(x))
	term := new(big.Int)
	for k := int64(0); power.Sign() != 0; k++ {
		term.Quo(power, big.NewInt(2*k+1))
		if k%2 == 0 {
			sum.Add(sum, term)
		} else {
			sum.Sub(sum, term)
		}
		power.Quo(power, xx)
	}
	return sum
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

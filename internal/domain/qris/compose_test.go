package qris_test

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/qris"
)

const merchantPayload = "00020101021126570011ID.DANA.WWW011893600915380003780002098000378000303UMI" +
	"51440014ID.CO.QRIS.WWW0215ID10243620012490303UMI5204549953033605802ID" +
	"5910Warr2 Shop6015Kab. Bandung Ba6105402936304BF4C"

func TestComposeDynamicPayload_KnownOutputs(t *testing.T) {
	head := "00020101021126570011ID.DANA.WWW011893600915380003780002098000378000303UMI" +
		"51440014ID.CO.QRIS.WWW0215ID10243620012490303UMI520454995303360"
	tail := "5802ID5910Warr2 Shop6015Kab. Bandung Ba6105402936304"

	tests := []struct {
		name   string
		amount int64
		field  string
		crc    string
	}{
		{name: "five digits", amount: 10500, field: "540510500", crc: "9676"},
		{name: "three digits", amount: 300, field: "5403300", crc: "AA78"},
		{name: "zero", amount: 0, field: "54010", crc: "760A"},
		{name: "cart total with fee", amount: 13200, field: "540513200", crc: "017F"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := qris.ComposeDynamicPayload(merchantPayload, tc.amount)
			assert.Equal(t, head+tc.field+tail+"6304"+tc.crc, got)
			assert.True(t, qris.VerifyChecksum(got))
		})
	}
}

func TestComposeDynamicPayload_AmountFollowsCurrency(t *testing.T) {
	for _, amount := range []int64{1, 9, 10, 99, 100, 123456789, 9999999999} {
		got := qris.ComposeDynamicPayload(merchantPayload, amount)
		assert.Contains(t, got, "5303360"+amountField(amount))
	}
}

func TestComposeDynamicPayload_ChecksumTrailer(t *testing.T) {
	got := qris.ComposeDynamicPayload(merchantPayload, 300)

	body, sum := got[:len(got)-4], got[len(got)-4:]
	assert.Equal(t, qris.Checksum(body), sum)
	assert.True(t, strings.HasSuffix(body, "6304"))
	assert.Equal(t, strings.ToUpper(sum), sum)
}

func TestComposeDynamicPayload_Deterministic(t *testing.T) {
	first := qris.ComposeDynamicPayload(merchantPayload, 10500)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = qris.ComposeDynamicPayload(merchantPayload, 10500)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		require.Equal(t, first, r)
	}
}

func TestComposeDynamicPayload_FlipsPointOfInitiation(t *testing.T) {
	static := "0002010211" + "5204549953033605802ID" + "ABCD"

	got := qris.ComposeDynamicPayload(static, 500)

	assert.Equal(t, "010212", got[4:10])
	assert.True(t, qris.VerifyChecksum(got))
}

func TestComposeDynamicPayload_LeavesOtherInitiationMarkers(t *testing.T) {
	got := qris.ComposeDynamicPayload(merchantPayload, 500)

	assert.Equal(t, merchantPayload[4:10], got[4:10])
}

func TestComposeDynamicPayload_CountryFallback(t *testing.T) {
	static := "0002010102115204549953033605802ID5910Warr2 Shop6304ABCD"
	static = strings.Replace(static, "5303360", "", 1)

	got := qris.ComposeDynamicPayload(static, 300)

	assert.Contains(t, got, "5403300"+"5802ID")
	assert.True(t, qris.VerifyChecksum(got))
}

func TestComposeDynamicPayload_AppendFallback(t *testing.T) {
	got := qris.ComposeDynamicPayload("00020101021159055SHOP6304ABCD", 300)

	assert.Equal(t, "00020101021159055SHOP6304"+"5403300"+"6304"+"83DF", got)
}

func TestComposeDynamicPayload_TrimsWhitespace(t *testing.T) {
	assert.Equal(t,
		qris.ComposeDynamicPayload(merchantPayload, 300),
		qris.ComposeDynamicPayload("  "+merchantPayload+"\n", 300),
	)
}

func TestComposeDynamicPayload_DegenerateInput(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		amount  int64
	}{
		{name: "empty", payload: "", amount: 100},
		{name: "short", payload: "000201", amount: 100},
		{name: "nine characters", payload: "123456789", amount: 100},
		{name: "negative amount", payload: merchantPayload, amount: -5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tc.payload, qris.ComposeDynamicPayload(tc.payload, tc.amount))
			})
		})
	}
}

func TestComposeDynamicPayload_WithoutTrailingChecksum(t *testing.T) {
	unsigned := strings.TrimSuffix(merchantPayload, "BF4C")

	got := qris.ComposeDynamicPayload(unsigned, 10500)

	info, err := qris.Inspect(got)
	require.NoError(t, err)
	assert.Equal(t, "10500", info.Amount)
	assert.Equal(t, "B694", info.Checksum)
	assert.Equal(t, "Warr2 Shop", info.MerchantName)
}

func amountField(amount int64) string {
	value := strconv.FormatInt(amount, 10)
	return fmt.Sprintf("54%02d%s", len(value), value)
}

package kafka

import (
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/require"
)

func Test_ToCanalMessage(t *testing.T) {
	r := require.New(t)

	msg := &sarama.ConsumerMessage{Value: []byte(`{
		"table": "companies",
		"type": "INSERT",
		"ts": 1700000000000,
		"data": [{"id": "c1", "name": "宏达五金", "is_deleted": "0"}]
	}`)}

	canalMsg, err := ToCanalMessage(msg, "companies")
	r.NoError(err)
	r.Equal(INSERT, canalMsg.Type)
	r.Equal("c1", StrToString(canalMsg.Data[0]["id"]))

	_, err = ToCanalMessage(msg, "delivery_orders")
	r.Error(err)

	_, err = ToCanalMessage(&sarama.ConsumerMessage{Value: []byte(`{"table":"companies","data":[]}`)}, "companies")
	r.Error(err)
}

func Test_Canal_FieldHelpers(t *testing.T) {
	r := require.New(t)

	r.Equal("x", StrToString("x"))
	r.Equal("", StrToString(nil))
	r.Equal(42, StrToInt("42"))
	r.Equal(0, StrToInt(nil))
	r.Equal(int64(9000000000), StrToInt64("9000000000"))
	r.True(StrToBool("1"))
	r.True(StrToBool("true"))
	r.False(StrToBool("0"))
	r.False(StrToBool(nil))

	parsed := StrToTime("2026-03-01 08:30:00")
	r.Equal(time.Date(2026, 3, 1, 8, 30, 0, 0, time.Local), parsed)
	r.True(StrToTime("garbage").IsZero())
	r.True(StrToTime(nil).IsZero())
}

package ctx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type testsuite struct {
	suite.Suite
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (ts *testsuite) TestWithValues() {
	c := WithValues(Background(), map[string]interface{}{
		"collection": "0x01",
		"tokenId":    "7",
	})
	ts.Equal("0x01", c.Value("collection"))
	ts.Equal("7", c.Value("tokenId"))
}

func (ts *testsuite) TestWithCaller() {
	bg := Background()
	ts.Equal("", Caller(bg))
	c := WithCaller(bg, "0xabc")
	ts.Equal("0xabc", Caller(c))
	ts.Equal("", Operation(c))
}

func (ts *testsuite) TestWithOperation() {
	c := WithOperation(WithCaller(Background(), "0xabc"), "buy")
	ts.Equal("buy", Operation(c))
	ts.Equal("0xabc", Caller(c))

	child, cancel := WithCancel(c)
	defer cancel()
	ts.Equal("buy", Operation(child))
	ts.Equal("0xabc", Caller(child))
}

func (ts *testsuite) TestTimeoutKeepsValues() {
	c, cancel := WithTimeout(WithOperation(Background(), "createBid"), 5*time.Millisecond)
	defer cancel()
	<-c.Done()
	ts.Equal("createBid", Operation(c))
	ts.Equal("context deadline exceeded", c.Err().Error())
}

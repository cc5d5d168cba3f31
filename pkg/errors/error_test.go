package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestConstructors() {
	cause := errors.New("duckdb: file not found")

	tests := []struct {
		name    string
		err     *Error
		code    ErrorCode
		message string
		cause   error
	}{
		{"new", New(ErrCodeInvalidTimeframe, "unsupported timeframe"), ErrCodeInvalidTimeframe, "unsupported timeframe", nil},
		{"newf", Newf(ErrCodeInvalidTimeframe, "unsupported timeframe %q", "2H"), ErrCodeInvalidTimeframe, `unsupported timeframe "2H"`, nil},
		{"wrap", Wrap(ErrCodeQueryFailed, "failed to load bars", cause), ErrCodeQueryFailed, "failed to load bars", cause},
		{"wrapf", Wrapf(ErrCodeQueryFailed, cause, "failed to load bars for %s", "AAPL"), ErrCodeQueryFailed, "failed to load bars for AAPL", cause},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.code, tc.err.Code)
			suite.Equal(tc.message, tc.err.Message)
			suite.Equal(tc.cause, tc.err.Cause)
		})
	}
}

func (suite *ErrorTestSuite) TestErrorString() {
	suite.Equal("[101] missing start date", New(ErrCodeInvalidConfiguration, "missing start date").Error())

	err := Wrap(ErrCodeNoDataFound, "no bars", errors.New("empty"))
	suite.Equal("[204] no bars: empty", err.Error())
}

func (suite *ErrorTestSuite) TestUnwrap() {
	cause := errors.New("underlying error")
	suite.Equal(cause, Wrap(ErrCodeDataNotFound, "data not found", cause).Unwrap())
	suite.Nil(New(ErrCodeInvalidParameter, "invalid parameter").Unwrap())
}

func (suite *ErrorTestSuite) TestGetCode() {
	suite.Equal(ErrCodeInvalidOrder, GetCode(New(ErrCodeInvalidOrder, "bad order")))

	inner := New(ErrCodeDataNotFound, "data not found")
	outer := Wrap(ErrCodeBacktestInitFailed, "init failed", inner)
	suite.Equal(ErrCodeBacktestInitFailed, GetCode(outer))

	// fmt wrapping keeps the code reachable
	suite.Equal(ErrCodeDataNotFound, GetCode(fmt.Errorf("loading: %w", inner)))

	suite.Equal(ErrCodeUnknown, GetCode(errors.New("standard error")))
}

func (suite *ErrorTestSuite) TestHasCodeIsAs() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeMarketDataFetchFailed, "fetch failed", cause)

	suite.True(HasCode(err, ErrCodeMarketDataFetchFailed))
	suite.False(HasCode(err, ErrCodeDataNotFound))
	suite.True(Is(err, cause))

	var coded *Error
	suite.True(As(err, &coded))
	suite.Equal(ErrCodeMarketDataFetchFailed, coded.Code)
}

func (suite *ErrorTestSuite) TestErrorCodeRanges() {
	suite.Equal(ErrorCode(1), ErrCodeUnknown)
	suite.Equal(ErrorCode(101), ErrCodeInvalidConfiguration)
	suite.Equal(ErrorCode(204), ErrCodeNoDataFound)
	suite.Equal(ErrorCode(502), ErrCodeMarketDataMissing)
	suite.Equal(ErrorCode(609), ErrCodeFeedAdvanceFailed)
	suite.Equal(ErrorCode(700), ErrCodeMarketDataFetchFailed)
}

func (suite *ErrorTestSuite) TestInsufficientDataError() {
	err := NewInsufficientDataErrorf(20, 5, "AAPL", "need %d bars for slow average, have %d", 20, 5)
	suite.Equal(20, err.Required)
	suite.Equal(5, err.Actual)
	suite.Equal("AAPL", err.Symbol)
	suite.Equal("need 20 bars for slow average, have 5", err.Error())

	suite.True(IsInsufficientDataError(fmt.Errorf("strategy: %w", err)))
	suite.False(IsInsufficientDataError(New(ErrCodeInvalidParameter, "invalid parameter")))
	suite.False(IsInsufficientDataError(nil))

	plain := NewInsufficientDataError(3, 1, "", "window not filled")
	suite.Equal("window not filled", plain.Error())
}

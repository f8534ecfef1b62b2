package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	service "github.com/okian/teamfit/internal/app"
	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKindError(t *testing.T) {
	Convey("Given errors tagged with an op and kind", t, func() {
		cause := errors.New("unexpected EOF")

		Convey("WrapKind matches both the kind and the cause", func() {
			err := WrapKind("api.op", ErrBadRequest, cause)
			So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: unexpected EOF")
		})

		Convey("NewKind carries only the kind", func() {
			err := NewKind("api.op", ErrNotFound)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: not found")
		})

		Convey("Wrap keeps the cause's kind and passes nil through", func() {
			err := Wrap("api.op", fmt.Errorf("%w: team t1", model.ErrMissingEntity))
			So(errors.Is(err, model.ErrMissingEntity), ShouldBeTrue)
			So(Wrap("api.op", nil), ShouldBeNil)
		})
	})
}

func TestFail(t *testing.T) {
	Convey("Given errors of each kind", t, func() {
		cases := []struct {
			err    error
			status int
		}{
			{fmt.Errorf("%w: bad", model.ErrInvalidInput), http.StatusBadRequest},
			{fmt.Errorf("%w: team", model.ErrMissingEntity), http.StatusNotFound},
			{fmt.Errorf("%w: p1", service.ErrBackpressure), http.StatusTooManyRequests},
			{fmt.Errorf("%w: timeout", model.ErrModelUnavailable), http.StatusServiceUnavailable},
			{service.ErrNotStarted, http.StatusServiceUnavailable},
			{fmt.Errorf("teams_for_project: %w", context.Canceled), statusClientClosedRequest},
			{fmt.Errorf("teams_for_project: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
			{errors.New("boom"), http.StatusInternalServerError},
		}

		Convey("Then each maps to its status code", func() {
			for _, tc := range cases {
				w := httptest.NewRecorder()
				r := httptest.NewRequest(http.MethodGet, "/x", nil)
				fail(w, r, "api.test", tc.err)
				So(w.Code, ShouldEqual, tc.status)
			}
		})
	})
}

func TestFailCanceledRequest(t *testing.T) {
	Convey("Given a client that went away during a ranking scan", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithWriter(&buf)), ShouldBeNil)
		Reset(func() { _ = logger.Init() })

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := httptest.NewRequest(http.MethodGet, "/projects/p1/ranking", nil).WithContext(ctx)
		w := httptest.NewRecorder()
		fail(w, r, "api.rank_teams", fmt.Errorf("rank: %w", ctx.Err()))

		Convey("Then it is reported as canceled without an error log", func() {
			So(w.Code, ShouldEqual, statusClientClosedRequest)
			So(w.Body.String(), ShouldContainSubstring, `"code":"canceled"`)
			So(buf.String(), ShouldNotContainSubstring, "level=ERROR")
		})
	})

	Convey("Given an unexpected failure", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithWriter(&buf)), ShouldBeNil)
		Reset(func() { _ = logger.Init() })

		r := httptest.NewRequest(http.MethodGet, "/projects/p1/ranking", nil)
		w := httptest.NewRecorder()
		fail(w, r, "api.rank_teams", errors.New("boom"))

		Convey("Then it is logged at error level", func() {
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(buf.String(), ShouldContainSubstring, "level=ERROR")
		})
	})
}

package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/kymawa/ratiba/apps/api/echo"
	"github.com/kymawa/ratiba/core"
	"github.com/kymawa/ratiba/core/attendance"
	"github.com/kymawa/ratiba/core/registration"
	"github.com/kymawa/ratiba/core/report"
	"github.com/kymawa/ratiba/core/schedule"
	"github.com/kymawa/ratiba/core/user"
	emailsvc "github.com/kymawa/ratiba/services/email"
	inmemdb "github.com/kymawa/ratiba/storage/database/inmem"
	testutil "github.com/kymawa/ratiba/tests"
)

// repositories shared with the fixtures of the current test
var (
	usrRepo  user.Repository
	lecRepo  schedule.LectureRepository
	ttRepo   schedule.TimetableRepository
	venRepo  schedule.VenueRepository
	crsRepo  registration.CourseRepository
	semRepo  registration.SemesterRepository
	unitRepo registration.UnitRepository
	regRepo  registration.RegistrationRepository
	instRepo attendance.Repository
)

func setup(t *testing.T) *echoapi.Server {
	t.Helper()

	db := inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	lecRepo = inmemdb.NewLectureRepository(db)
	ttRepo = inmemdb.NewTimetableRepository(db)
	venRepo = inmemdb.NewVenueRepository(db)
	crsRepo = inmemdb.NewCourseRepository(db)
	semRepo = inmemdb.NewSemesterRepository(db)
	unitRepo = inmemdb.NewUnitRepository(db)
	regRepo = inmemdb.NewRegistrationRepository(db)
	instRepo = inmemdb.NewInstanceRepository(db)

	conf := &core.Config{AppName: "Ratiba", TestMode: true}
	logger := testutil.NewLogger()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)
	schedule.RegisterValidators(validate, translator)

	return echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:            conf,
			Logger:          logger,
			UserSvc:         user.NewService(usrRepo),
			ScheduleSvc:     schedule.NewService(logger, lecRepo, ttRepo, venRepo, validate),
			AttendanceSvc:   attendance.NewService(logger, instRepo, lecRepo),
			RegistrationEng: registration.NewEngine(logger, semRepo, unitRepo, regRepo, usrRepo, mailSvc),
			ReportSvc: report.NewService(
				logger, lecRepo, ttRepo, instRepo, regRepo, unitRepo, usrRepo),
			Validate:       validate,
			Translator:     translator,
			DisableReqLogs: true,
		},
	)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decoding response %q failed: %v", rec.Body.String(), err)
	}
}

package logger_test

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/relloyd/snowxfer/logger"
)

var _ = Describe("Logger", func() {
	log := logger.NewLogger("test-service", "debug", true)
	log.SetJSONFormat()

	It("Should have `test-service` as service name", func() {
		logOutput := bytes.NewBufferString("")
		log.SetOutput(logOutput)

		log.Info("Testing")
		var actual map[string]interface{}
		Expect(json.Unmarshal(logOutput.Bytes(), &actual)).To(Succeed())

		Expect(actual["service"]).To(Equal("test-service"))
	})

	It("Should have info as log level", func() {
		var actual map[string]interface{}
		logOutput := bytes.NewBufferString("")
		log.SetOutput(logOutput)

		log.Info("Testing")
		Expect(json.Unmarshal(logOutput.Bytes(), &actual)).To(Succeed())

		Expect(actual["level"]).To(Equal("info"))
	})

	It("Should have warn as log level", func() {
		logOutput := bytes.NewBufferString("")
		log.SetOutput(logOutput)

		log.Warn("Testing")
		var actual map[string]interface{}
		Expect(json.Unmarshal(logOutput.Bytes(), &actual)).To(Succeed())

		Expect(actual["level"]).To(Equal("warning"))
	})

	It("Should have error as log level with a stack trace", func() {
		logOutput := bytes.NewBufferString("")
		log.SetOutput(logOutput)

		log.Error("Testing")
		var actual map[string]interface{}
		Expect(json.Unmarshal(logOutput.Bytes(), &actual)).To(Succeed())

		Expect(actual["level"]).To(Equal("error"))
		Expect(actual["stackTrace"]).ToNot(BeNil())
	})

	It("Should have `Testing` as msg", func() {
		logOutput := bytes.NewBufferString("")
		log.SetOutput(logOutput)

		log.Info("Testing")
		var actual map[string]interface{}
		Expect(json.Unmarshal(logOutput.Bytes(), &actual)).To(Succeed())

		Expect(actual["msg"]).To(Equal("Testing"))
	})

	It("Should skip debug entries at info level", func() {
		l := logger.NewLogger("quiet", "INFO", false)
		logOutput := bytes.NewBufferString("")
		l.SetOutput(logOutput)

		l.Debug("hidden")
		Expect(logOutput.Len()).To(Equal(0))
	})

	It("Should fall back to info for an unknown level", func() {
		l := logger.NewLogger("fallback", "chatty", false)
		Expect(l.LogLevelStr).To(Equal("info"))
	})

	It("Should append entries to a log file", func() {
		dir, err := ioutil.TempDir("", "snowxfer-logger")
		Expect(err).To(BeNil())
		defer os.RemoveAll(dir)
		fileName := filepath.Join(dir, "nested", "run.log")

		l, err := logger.NewLoggerWithFile("file-service", "info", false, fileName)
		Expect(err).To(BeNil())
		l.Info("written to file")
		Expect(l.Close()).To(Succeed())

		b, err := ioutil.ReadFile(fileName)
		Expect(err).To(BeNil())
		Expect(strings.Contains(string(b), "written to file")).To(BeTrue())
	})
})

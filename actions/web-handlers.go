package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/stats"
)

type WebServerResponse uint32

const (
	Okay WebServerResponse = iota + 1
	Error
)

func (w WebServerResponse) MarshalJSON() ([]byte, error) {
	var retval string
	switch w {
	case Okay:
		retval = "ok"
	case Error:
		retval = "error"
	default:
		err := fmt.Errorf("unhandled WebServerResponse value in MarshalJSON() conversion")
		return nil, err
	}
	return json.Marshal(retval)
}

type ResponseSimple struct {
	ServerStatus WebServerResponse `json:"status"`
}

type ResponseTransferStats struct {
	Status       WebServerResponse `json:"status"`
	Message      string            `json:"message"`
	StatsSummary []stats.Stats     `json:"transferStats"`
}

type ResponseTransferStatus struct {
	Status         WebServerResponse `json:"status"`
	Message        string            `json:"message"`
	TransferStatus TransferStatus    `json:"transferStatus"`
}

type ResponseTransferStop struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
}

func GetHandlerHealth(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseSimple{ServerStatus: Okay})
	}
}

func GetHandlerTransferStats(log logger.Logger, f stats.StatsFetcher) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if f == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			respond(log, w, ResponseTransferStats{Status: Error, Message: "stats are not available"})
			return
		}
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseTransferStats{Status: Okay, StatsSummary: f.GetStats()})
	}
}

func GetHandlerTransferStatus(log logger.Logger, f StatusFetcher) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if f == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			respond(log, w, ResponseTransferStatus{Status: Error, Message: "status is not available"})
			return
		}
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseTransferStatus{Status: Okay, TransferStatus: f.Status()})
	}
}

func GetHandlerStopTransfer(log logger.Logger, stop context.CancelFunc) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if stop == nil {
			w.WriteHeader(http.StatusBadRequest)
			respond(log, w, ResponseTransferStop{Status: Error, Message: "nothing to stop"})
			return
		}
		stop()
		log.Info("Stop signal sent")
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseTransferStop{Status: Okay, Message: "shutting down"})
	}
}

// respond will marshal i to a string and write it to w.
func respond(log logger.Logger, w http.ResponseWriter, i interface{}) {
	j, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		log.Error(err)
		return
	}
	if _, err = fmt.Fprint(w, string(j)); err != nil {
		log.Error(err)
	}
}

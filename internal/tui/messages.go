package tui

import (
	"github.com/matheuskafuri/techpulse/internal/forecast"
)

type tablesLoadedMsg struct {
	tables *forecast.Tables
}

type loadErrMsg struct {
	err error
}

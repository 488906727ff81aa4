// Package tesseract adapts gosseract to the ocr.Engine interface. Each engine
// wraps one tesseract client configured for short single-line UI labels.
package tesseract

import (
	"fmt"
	"os"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/soocke/login-bot-go/domain/ocr"
)

// labelVariables tune tesseract for short labels rendered at screen DPI.
var labelVariables = map[gosseract.SettableVariable]string{
	"load_system_dawg": "0",
	"load_freq_dawg":   "0",
	"user_defined_dpi": "96",
}

var (
	paramsOnce sync.Once
	paramsPath string
	paramsErr  error
)

// initParamsFile writes ocr.InitParams once per process. Engine mode is read
// only during init, so it goes through a config file rather than SetVariable.
func initParamsFile() (string, error) {
	paramsOnce.Do(func() {
		dir, err := os.MkdirTemp("", "autologin-tess-")
		if err != nil {
			paramsErr = err
			return
		}
		paramsPath, paramsErr = ocr.WriteParamsFile(dir, ocr.InitParams)
	})
	return paramsPath, paramsErr
}

type engine struct {
	client *gosseract.Client
}

// New is an ocr.EngineFactory.
func New(dataPath, lang string) (ocr.Engine, error) {
	c := gosseract.NewClient()
	if err := c.SetTessdataPrefix(dataPath); err != nil {
		c.Close()
		return nil, fmt.Errorf("tesseract: tessdata prefix: %w", err)
	}
	if err := c.SetLanguage(lang); err != nil {
		c.Close()
		return nil, fmt.Errorf("tesseract: language %q: %w", lang, err)
	}
	cfgFile, err := initParamsFile()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("tesseract: params: %w", err)
	}
	if err := c.SetConfigFile(cfgFile); err != nil {
		c.Close()
		return nil, fmt.Errorf("tesseract: config file: %w", err)
	}
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		c.Close()
		return nil, fmt.Errorf("tesseract: page seg mode: %w", err)
	}
	for k, v := range labelVariables {
		if err := c.SetVariable(k, v); err != nil {
			c.Close()
			return nil, fmt.Errorf("tesseract: variable %s: %w", k, err)
		}
	}
	return &engine{client: c}, nil
}

func (e *engine) Text(png []byte) (string, error) {
	if err := e.client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("tesseract: image: %w", err)
	}
	return e.client.Text()
}

func (e *engine) Close() error { return e.client.Close() }

var _ ocr.EngineFactory = New

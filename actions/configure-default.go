package actions

import (
	"fmt"
	"io"

	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/helper"
)

type DefaultAddConfig struct {
	ConfigFile *config.File `errorTxt:"config-file" mandatory:"yes"`
	Key        string       `errorTxt:"key" mandatory:"yes"`
	Value      string       `errorTxt:"value" mandatory:"yes"`
	Force      bool
	Output     io.Writer
}

type DefaultRemoveConfig struct {
	ConfigFile *config.File `errorTxt:"config-file" mandatory:"yes"`
	Key        string       `errorTxt:"key" mandatory:"yes"`
	Output     io.Writer
}

type DefaultListConfig struct {
	ConfigFile *config.File `errorTxt:"config-file" mandatory:"yes"`
	Output     io.Writer
}

// RunDefaultAdd adds key+value to the given config file.
// If cfg.Force is not set then it return an error when the key exists.
// The config file is created when the value is first saved.
func RunDefaultAdd(cfg *DefaultAddConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	var val string
	if err := cfg.ConfigFile.Get(cfg.Key, &val); err == nil && !cfg.Force { // if key exists and we're not allowed to overwrite...
		return fmt.Errorf("key %q exists, use force to update the value or remove it first", cfg.Key)
	} else if err != nil { // else there is an error...
		_, keyNotFoundErr := err.(config.KeyNotFoundError)
		_, fileNotFoundErr := err.(config.FileNotFoundError)
		if !(keyNotFoundErr || fileNotFoundErr) { // if there was an unexpected error...
			return err
		}
	}
	err := cfg.ConfigFile.Set(cfg.Key, cfg.Value)
	if err != nil {
		return fmt.Errorf("error writing config file after adding: %v", err)
	}
	printf(outputOrStdout(cfg.Output), "Key %q added to %q\n", cfg.Key, cfg.ConfigFile.FullPath)
	return nil
}

// RunDefaultRemove removes a key from the given config file.
func RunDefaultRemove(cfg *DefaultRemoveConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	err := cfg.ConfigFile.Delete(cfg.Key)
	if err != nil {
		return fmt.Errorf("unable to delete key %q from config: %v", cfg.Key, err)
	}
	printf(outputOrStdout(cfg.Output), "Key %q removed\n", cfg.Key)
	return nil
}

// RunDefaultList prints every key and value in the config file.
// Values of keys that look like secrets are masked.
func RunDefaultList(cfg *DefaultListConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	w := outputOrStdout(cfg.Output)
	keys, err := cfg.ConfigFile.GetAllKeys()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		printf(w, "No defaults found in %q\n", cfg.ConfigFile.FullPath)
		return nil
	}
	props := make([][2]string, 0, len(keys))
	for _, k := range keys {
		var v string
		if err = cfg.ConfigFile.Get(k, &v); err != nil {
			return err
		}
		if isSecretKey(k) {
			v = "********"
		}
		props = append(props, [2]string{k, v})
	}
	renderProperties(w, fmt.Sprintf("Defaults in %v", cfg.ConfigFile.FullPath), props)
	return nil
}

type ConfigTemplateConfig struct {
	FileName string `errorTxt:"output file" mandatory:"yes"`
	Output   io.Writer
}

// RunConfigTemplate writes a starter config file.
func RunConfigTemplate(cfg *ConfigTemplateConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	fileName, err := config.ExpandPath(cfg.FileName)
	if err != nil {
		return err
	}
	if err = config.WriteTemplate(fileName); err != nil {
		return err
	}
	printf(outputOrStdout(cfg.Output), "Template saved to: %v\n", fileName)
	return nil
}

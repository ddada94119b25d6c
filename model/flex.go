package model

import (
	"strconv"
	"strings"

	"github.com/firsthash/console/util/json"
)

// StringList 规范化后端返回的id列表，兼容数组、逗号拼接字符串和null
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	*l = nil
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var arr []interface{}
		if err := json.Unmarshal(data, &arr); err != nil {
			return nil
		}
		for _, v := range arr {
			switch t := v.(type) {
			case string:
				if id := strings.TrimSpace(t); id != "" {
					*l = append(*l, id)
				}
			case float64:
				*l = append(*l, strconv.FormatFloat(t, 'f', -1, 64))
			}
		}
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return nil
	}
	for _, part := range strings.Split(str, ",") {
		if id := strings.TrimSpace(part); id != "" {
			*l = append(*l, id)
		}
	}
	return nil
}

// FlexInt 兼容数字和数字字符串
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	*f = 0
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		if v, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			*f = FlexInt(int(v))
		}
		return nil
	}
	*f = FlexInt(n)
	return nil
}

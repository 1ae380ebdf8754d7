package sentiment_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crypto_dashboard/pkg/sentiment"
)

func TestFetchIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "1" {
			t.Errorf("应只请求最新一条, limit=%s", r.URL.Query().Get("limit"))
		}
		fmt.Fprint(w, `{"name":"Fear and Greed Index","data":[{"value":"54","value_classification":"Neutral","timestamp":"1718000000"}]}`)
	}))
	defer server.Close()

	client := sentiment.New(server.URL, 5*time.Second)
	snapshot, err := client.FetchIndex(context.Background())
	if err != nil {
		t.Fatalf("获取恐慌贪婪指数失败: %v", err)
	}
	if snapshot.Value != 54 {
		t.Errorf("指数数值错误: 期望 54, 实际 %d", snapshot.Value)
	}
	if snapshot.Label != "Neutral" {
		t.Errorf("指数分类错误: 期望 Neutral, 实际 %q", snapshot.Label)
	}
}

func TestFetchIndexErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"非200响应": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		},
		"空数据": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":[]}`)
		},
		"非法数值": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":[{"value":"abc","value_classification":"Fear"}]}`)
		},
		"非法JSON": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `not json`)
		},
	}

	for name, handler := range cases {
		server := httptest.NewServer(handler)
		client := sentiment.New(server.URL, 5*time.Second)
		if _, err := client.FetchIndex(context.Background()); err == nil {
			t.Errorf("%s: 应返回错误", name)
		}
		server.Close()
	}
}

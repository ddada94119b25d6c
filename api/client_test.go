package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/firsthash/console/errors"
	"github.com/firsthash/console/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cli := NewClient(TokenFunc(func() (string, error) {
		return "tok-123", nil
	}), Config{
		Schema: "http",
		Host:   strings.TrimPrefix(srv.URL, "http://"),
	})
	return cli, srv
}

func TestBearerAttached(t *testing.T) {
	cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			t.Error("缺少bearer头", r.Header.Get("Authorization"))
		}
		if r.URL.Path != "/api/members" {
			t.Error("路径不对", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"m1","name":"Asha"}]`))
	})
	var members []model.Member
	if err := cli.FindMemberQuery(nil, &members); err != nil {
		t.Fatal(err)
	}
	if len(members) != 1 || members[0].ID != "m1" {
		t.Fatal("结果未解析", members)
	}
}

// 拿不到token时在任何网络调用前中止
func TestUnauthenticatedAbort(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()
	cli := NewClient(TokenFunc(func() (string, error) {
		return "", nil
	}), Config{Schema: "http", Host: strings.TrimPrefix(srv.URL, "http://")})

	err := cli.FindTaskQuery(nil, &[]model.Task{})
	if err != ErrUnauthenticated {
		t.Fatal("应返回未认证错误", err)
	}
	if called {
		t.Fatal("不应发出网络请求")
	}
}

// 非2xx带后端消息返回APIError
func TestAPIErrorMessage(t *testing.T) {
	cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"conflict","message":"task already finalized"}`))
	})
	err := cli.UpdateTaskById("t1", map[string]string{"title": "x"}, nil)
	if err == nil {
		t.Fatal("应失败")
	}
	e, ok := errors.AsAPIError(err)
	if !ok {
		t.Fatal("应为APIError", err)
	}
	if e.Code != http.StatusConflict || e.UserMessage() != "task already finalized" {
		t.Fatal("错误内容不对", e)
	}
}

func TestShootAssignmentBody(t *testing.T) {
	var gotPath, gotBody string
	cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	})
	body := model.AssignmentUpdate{ServiceName: "Photographer", AssigneeIDs: []string{"m1", "m2"}}
	if err := cli.UpdateShootAssignments("s1", body, nil); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/api/shoots/s1/assignments" {
		t.Fatal("路径不对", gotPath)
	}
	if !strings.Contains(gotBody, `"serviceName":"Photographer"`) || !strings.Contains(gotBody, `"m2"`) {
		t.Fatal("提交体不对", gotBody)
	}
}

// 表单校验失败在发出前中止
func TestPayloadValidation(t *testing.T) {
	called := false
	cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	err := cli.SaveTask(model.TaskCreate{Title: ""}, nil)
	if err == nil {
		t.Fatal("空标题应校验失败")
	}
	if called {
		t.Fatal("校验失败不应发请求")
	}
	// 非法状态枚举
	if err := cli.SaveTask(model.TaskCreate{Title: "x", Status: "bogus"}, nil); err == nil {
		t.Fatal("非法状态应校验失败")
	}
}

func TestUploadMultipart(t *testing.T) {
	cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Error(err)
			return
		}
		if r.FormValue("uploadType") != "voice_note" {
			t.Error("uploadType不对", r.FormValue("uploadType"))
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Error(err)
			return
		}
		defer f.Close()
		if hdr.Filename != "note.webm" {
			t.Error("文件名不对", hdr.Filename)
		}
		b, _ := io.ReadAll(f)
		if string(b) != "audio-bytes" {
			t.Error("文件内容不对")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"url":"https://cdn.example/note.webm","uploadType":"voice_note"}`))
	})
	var up model.Upload
	err := cli.UploadFile(strings.NewReader("audio-bytes"), "note.webm", "voice_note", &up)
	if err != nil {
		t.Fatal(err)
	}
	if up.URL != "https://cdn.example/note.webm" {
		t.Fatal("上传结果未解析", up)
	}
}

func TestQueryEncoding(t *testing.T) {
	cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		if !strings.Contains(q, `"project_id":"p1"`) {
			t.Error("query参数不对", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})
	var tasks []model.Task
	if err := cli.FindTaskQuery(map[string]string{"project_id": "p1"}, &tasks); err != nil {
		t.Fatal(err)
	}
}

package protocol

import (
	"context"

	"github.com/lxr/gitkv/object"
	"github.com/lxr/gitkv/pktline"
	"github.com/lxr/gitkv/repository"
)

// AdvertiseRefs returns the info/refs advertisement of service for
// repo, starting with the "# service=" announcement.
//
// The upload-pack advertisement is a fixed protocol v2 capability
// statement and never reads the store.  The receive-pack advertisement
// lists the branches of repo, the first of them carrying the
// capability list after a NUL byte; an empty repository is advertised
// with the "capabilities^{}" placeholder instead.
func AdvertiseRefs(ctx context.Context, s repository.Interface, repo repository.Repo, service Service) ([]pktline.Packet, error) {
	var out packetBuffer
	switch service {
	case UploadPack:
		fmtLprintf(&out, "# service=%s", service)
		out.Flush()
		out.WriteLine("version 2")
		for _, cp := range UploadPackCapabilities {
			out.WriteLine(cp)
		}
		out.Flush()
	case ReceivePack:
		refs, err := repository.ListBranches(ctx, s, repo)
		if err != nil {
			return nil, err
		}
		fmtLprintf(&out, "# service=%s", service)
		out.Flush()
		if len(refs) == 0 {
			fmtLprintf(&out, "%s capabilities^{}\x00%s", object.ZeroID, ReceivePackCapabilities)
		}
		for i, ref := range refs {
			if i == 0 {
				fmtLprintf(&out, "%s %s\x00%s", ref.ID, ref.Name, ReceivePackCapabilities)
				continue
			}
			fmtLprintf(&out, "%s %s", ref.ID, ref.Name)
		}
		out.Flush()
	default:
		return nil, ErrLegacyProtocol
	}
	return out, nil
}
